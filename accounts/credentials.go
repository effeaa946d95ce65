package accounts

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Verifier is the one-way comparison of a submitted secret against a stored
// credential. It returns match/no-match only and must never recover or log
// the secret.
type Verifier interface {
	Verify(storedCredential, submittedSecret string) bool
}

func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// BcryptVerifier verifies secrets against bcrypt hashes produced by
// HashSecret.
type BcryptVerifier struct{}

var _ Verifier = BcryptVerifier{}

func (BcryptVerifier) Verify(storedCredential, submittedSecret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedCredential), []byte(submittedSecret))
	return err == nil
}

// dummyCredential is a valid hash of a random secret generated at startup.
// Comparing against it makes the absent-login path cost the same as a real
// mismatch, so response timing does not reveal whether a login exists.
var dummyCredential = func() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("accounts: failed to generate dummy credential: " + err.Error())
	}
	hash, err := HashSecret(base64.RawURLEncoding.EncodeToString(buf))
	if err != nil {
		panic("accounts: failed to hash dummy credential: " + err.Error())
	}
	return hash
}()

// DummyCredential returns a hash that matches no submittable secret.
func DummyCredential() string {
	return dummyCredential
}
