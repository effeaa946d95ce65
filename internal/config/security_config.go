package config

import "time"

type SecurityConfig interface {
	GetAdminLogin() string
	GetAdminPassword() string
	GetTokenSecret() string
	GetTokenExpiry() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetAdminLogin() string {
	return v.GetString("admin.login")
}

// GetAdminPassword returns the bootstrap admin password. Empty means a
// password is generated at startup and printed once to the log.
func (Security) GetAdminPassword() string {
	return v.GetString("admin.password")
}

// GetTokenSecret returns the HS256 signing secret. Empty means a random
// secret is generated at startup; issued tokens then do not survive a
// restart.
func (Security) GetTokenSecret() string {
	return v.GetString("security.token_secret")
}

func (Security) GetTokenExpiry() time.Duration {
	return v.GetDuration("security.token_expiry")
}
