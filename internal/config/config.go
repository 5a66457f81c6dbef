package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Cuotas"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"cuotas"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		// CORSOrigins is the comma separated list of front-end origins.
		CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		Username string `envconfig:"AUTH_USERNAME" default:"admin"`
		// PasswordHash is a bcrypt hash. An empty hash disables login.
		PasswordHash string        `envconfig:"AUTH_PASSWORD_HASH"`
		JWTSecret    string        `envconfig:"AUTH_JWT_SECRET"`
		TokenTTL     time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"12h"`
	}

	Notifications struct {
		PollInterval time.Duration `envconfig:"NOTIFICATIONS_POLL_INTERVAL" default:"5m"`
	}

	Business struct {
		Name  string `envconfig:"BUSINESS_NAME" default:"Cuotas"`
		Phone string `envconfig:"BUSINESS_PHONE"`
		// CountryCode is prefixed to local phone numbers in chat links.
		CountryCode string `envconfig:"BUSINESS_COUNTRY_CODE" default:"54"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
