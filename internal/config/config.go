package config

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	CorsConfig
	SeatConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetDatabasePath() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Cors
	Seat
	Security
}

var (
	v    *viper.Viper
	once sync.Once
)

// New loads the configuration once: defaults, an optional config.yaml in the
// working directory, and SEAT_* environment overrides (e.g. SEAT_SERVER_PORT).
func New() Config {
	once.Do(func() {
		v = viper.New()

		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		v.SetEnvPrefix("SEAT")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		setDefaults(v)

		// The config file is optional; env and defaults are enough to run.
		_ = v.ReadInConfig()
	})
	return mainConfig{}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.app_name", "Seat Server")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.env", "DEV")

	v.SetDefault("database.path", "./data/seats.db")

	v.SetDefault("seat.policy", string(defaultSeatPolicy))
	v.SetDefault("seat.subscription_model", string(defaultSubscriptionModel))
	v.SetDefault("seat.default_trial_period", "0s")

	v.SetDefault("admin.login", "admin")
	v.SetDefault("admin.password", "")

	v.SetDefault("security.token_secret", "")
	v.SetDefault("security.token_expiry", "1h")

	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("cors.allowed_methods", "GET, POST, PUT, PATCH, DELETE")
	v.SetDefault("cors.allowed_headers", "Content-Type, Authorization")
}
