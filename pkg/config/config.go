// Package config loads the arcade service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DevJWTSecret is the signing key used when ARCADE_JWT_SECRET is unset. It is
// only accepted when ARCADE_ENV is "development".
const DevJWTSecret = "change-me-in-production-please"

// Config holds runtime settings for the arcade API. Database and logger
// settings are read separately by their own packages.
type Config struct {
	Addr           string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:5000" validate:"required"`
	Environment    string        `env:"ARCADE_ENV" envDefault:"development"`
	JWTSecret      string        `env:"ARCADE_JWT_SECRET" envDefault:"change-me-in-production-please" validate:"required,min=16"`
	Issuer         string        `env:"ARCADE_ISSUER" envDefault:"arcade" validate:"required"`
	SessionTTL     time.Duration `env:"ARCADE_SESSION_TTL" envDefault:"168h" validate:"gt=0"`
	StartingTokens int64         `env:"ARCADE_STARTING_TOKENS" envDefault:"1000" validate:"gte=0"`
	BcryptCost     int           `env:"ARCADE_BCRYPT_COST" envDefault:"10" validate:"gte=4,lte=31"`
	OwnerUsername  string        `env:"ARCADE_OWNER_USERNAME"`
	AllowedOrigin  string        `env:"ARCADE_ALLOWED_ORIGIN" envDefault:"*"`
	RedisURL       string        `env:"REDIS_URL"`
	AuthRateLimit  int           `env:"ARCADE_AUTH_RATE_LIMIT" envDefault:"20" validate:"gte=0"`
	AuthRateWindow time.Duration `env:"ARCADE_AUTH_RATE_WINDOW" envDefault:"1m" validate:"gt=0"`
	SentryDSN      string        `env:"SENTRY_DSN"`
}

// Load reads an optional .env file, parses the environment into Config and
// validates the result.
func Load() (Config, error) {
	// best-effort: a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	if cfg.Environment != "development" && cfg.JWTSecret == DevJWTSecret {
		return Config{}, errors.New("validate config: ARCADE_JWT_SECRET must be set outside development")
	}
	return cfg, nil
}
