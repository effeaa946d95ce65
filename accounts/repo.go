package accounts

import "errors"

var (
	// ErrLoginTaken is returned by Create when the login already exists.
	ErrLoginTaken = errors.New("login already taken")
	// ErrNotFound is returned when no account exists for a login.
	ErrNotFound = errors.New("account not found")
)

// Mutator mutates an account in place inside a store's critical section.
// Returning an error aborts the update and leaves the stored account
// untouched; the error is passed back to the caller unchanged.
type Mutator func(*Account) error

// Store is the durable mapping from login to Account. Update is the lock
// boundary for the seat state machine: implementations must serialize
// concurrent Updates for the same login and run the read, the mutator and
// the write as one atomic section. Updates for different logins must not
// contend. An Update must never span more than one account.
type Store interface {
	Create(account *Account) error
	Get(login string) (*Account, error)
	Update(login string, mutate Mutator) (*Account, error)
	List() ([]*Account, error)
}
