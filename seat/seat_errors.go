package seat

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrLoginTaken          = errors.New("login already taken")
	ErrInvalidCredentials  = errors.New("invalid login or secret")
	ErrSubscriptionExpired = errors.New("subscription is not active")
	ErrSeatConflict        = errors.New("seat is held by an active session")
	ErrForbidden           = errors.New("admin privileges required")
	ErrNotFound            = errors.New("account not found")
	ErrStoreUnavailable    = errors.New("account store unavailable")
)
