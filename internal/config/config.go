// internal/config/config.go
//
// Process configuration, read from the environment (a .env file is loaded
// first by main when present).
//
// Environment variables:
//   PORT=5175                  listen port
//   LOG_LEVEL=info             zerolog level
//   LOG_PRETTY=false           human-readable console logs
//   STORE_BACKEND=memory       memory | redis
//   REDIS_ADDR=localhost:6379  redis backend only
//   REDIS_PASSWORD=
//   REDIS_DB=0
//   SESSION_TTL=24h            idle session expiry
//   SESSION_SECRET=...         HS256 key for the session cookie
//   COOKIE_NAME=numguess_session
//   COOKIE_SECURE=false
//   REQUEST_TIMEOUT=10s
//   RANDOM_SEED=0              0 = time-based secrets

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultSessionSecret is only acceptable for local development.
const DefaultSessionSecret = "dev_secret_change_me"

// Config is the full server configuration.
type Config struct {
	Port           string        `env:"PORT"            envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"`
	LogPretty      bool          `env:"LOG_PRETTY"      envDefault:"false"`
	StoreBackend   string        `env:"STORE_BACKEND"   envDefault:"memory"`
	RedisAddr      string        `env:"REDIS_ADDR"      envDefault:"localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB"        envDefault:"0"`
	SessionTTL     time.Duration `env:"SESSION_TTL"     envDefault:"24h"`
	SessionSecret  string        `env:"SESSION_SECRET"  envDefault:"dev_secret_change_me"`
	CookieName     string        `env:"COOKIE_NAME"     envDefault:"numguess_session"`
	CookieSecure   bool          `env:"COOKIE_SECURE"   envDefault:"false"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	RandomSeed     int64         `env:"RANDOM_SEED"     envDefault:"0"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.StoreBackend)
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.CookieName == "" {
		return errors.New("COOKIE_NAME must not be empty")
	}
	if c.SessionTTL < 0 {
		return errors.New("SESSION_TTL must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
