package config

import "fmt"

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := v.GetString("server.port")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return v.GetString("server.app_name")
}

// GetBaseURL returns the externally visible base URL of the service.
func (EnvVars) GetBaseURL() string {
	return v.GetString("server.base_url")
}

// GetDatabasePath returns the SQLite database file. An empty value selects
// the in-memory store, which only makes sense for dev and tests.
func (EnvVars) GetDatabasePath() string {
	return v.GetString("database.path")
}

func (EnvVars) GetEnv() string {
	env := v.GetString("server.env")
	if env == "" {
		return "DEV"
	}
	return env
}
