package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/seatwise/go-seat-server/accounts"
)

// adminSubscriptionYears is how far out the bootstrap admin's window is set.
// The admin gate checks credentials and the admin flag, not the window, but
// a far-future expiry also lets the admin take a seat like any account.
const adminSubscriptionYears = 100

// BootstrapAdmin ensures the configured admin account exists. On first
// creation with no configured password, a password is generated and printed
// once to the log.
func (s *Server) BootstrapAdmin() error {
	adminLogin := s.config.GetAdminLogin()
	if adminLogin == "" {
		return errors.New("[Server BootstrapAdmin] admin login is not configured")
	}

	if _, err := s.store.Get(adminLogin); err == nil {
		log.Printf("[Server BootstrapAdmin] admin account already exists: %s", adminLogin)
		return nil
	} else if !errors.Is(err, accounts.ErrNotFound) {
		return errors.Wrap(err, "[Server BootstrapAdmin] failed to check admin account")
	}

	password := s.config.GetAdminPassword()
	generated := password == ""
	if generated {
		password = generatePassword()
	}

	hash, err := accounts.HashSecret(password)
	if err != nil {
		return errors.Wrap(err, "[Server BootstrapAdmin] failed to hash admin password")
	}

	expiry := time.Now().AddDate(adminSubscriptionYears, 0, 0)
	admin := &accounts.Account{
		Login:              adminLogin,
		CredentialHash:     hash,
		SubscriptionExpiry: &expiry,
		IsAdmin:            true,
	}
	if err := s.store.Create(admin); err != nil {
		return errors.Wrap(err, "[Server BootstrapAdmin] failed to create admin account")
	}

	log.Printf("Admin account created:")
	log.Printf("   Login:    %s", adminLogin)
	if generated {
		log.Printf("   Password: %s", password)
		log.Printf("   SAVE THIS PASSWORD - it will not be displayed again!")
	}
	log.Printf("   Base URL: %s", s.config.GetBaseURL())
	return nil
}

func generatePassword() string {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("server: failed to generate admin password: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
