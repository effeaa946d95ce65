package accounts

import (
	"time"
)

// Account is the stored record for a single login. The login is the unique
// identity and is immutable once created; the credential hash never leaves
// this package in any serialized form.
type Account struct {
	ID             string `json:"id,omitempty"`    // Unique identifier for the account
	Login          string `json:"login,omitempty"` // Unique login, case-sensitive
	CredentialHash string `json:"-"`               // Hashed secret - never serialize

	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"` // nil means never activated
	BoundDeviceID      *string    `json:"bound_device_id,omitempty"`     // Set once on first successful authenticate
	SessionActive      bool       `json:"session_active,omitempty"`      // True while the seat is checked out
	IsAdmin            bool       `json:"is_admin,omitempty"`            // Grants access to override operations

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Summary is the admin-facing projection of an Account. It deliberately has
// no credential field.
type Summary struct {
	Login              string     `json:"login"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
	SessionActive      bool       `json:"session_active"`
	BoundDeviceID      *string    `json:"bound_device_id,omitempty"`
	IsAdmin            bool       `json:"is_admin"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Summary returns the admin-visible view of the account.
func (a *Account) Summary() Summary {
	return Summary{
		Login:              a.Login,
		SubscriptionExpiry: copyTime(a.SubscriptionExpiry),
		SessionActive:      a.SessionActive,
		BoundDeviceID:      copyString(a.BoundDeviceID),
		IsAdmin:            a.IsAdmin,
		CreatedAt:          a.CreatedAt,
	}
}

// Clone returns a deep copy so store implementations can hand out accounts
// without aliasing their internal state.
func (a *Account) Clone() *Account {
	clone := *a
	clone.SubscriptionExpiry = copyTime(a.SubscriptionExpiry)
	clone.BoundDeviceID = copyString(a.BoundDeviceID)
	return &clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
