// Package config reads service settings from the environment.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const (
	AuthNone  = "none"
	AuthToken = "token"
)

type Config struct {
	DBPath        string        `env:"PRYSMA_DB_PATH"`
	Addr          string        `env:"PRYSMA_ADDR" envDefault:"127.0.0.1:8787"`
	AuthMode      string        `env:"PRYSMA_AUTH_MODE" envDefault:"none"`
	SessionSecret string        `env:"PRYSMA_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"PRYSMA_SESSION_TTL" envDefault:"720h"`
	WriteDebounce time.Duration `env:"PRYSMA_WRITE_DEBOUNCE" envDefault:"300ms"`
	WriteTimeout  time.Duration `env:"PRYSMA_WRITE_TIMEOUT" envDefault:"10s"`
	LogEncoding   string        `env:"PRYSMA_LOG_ENCODING" envDefault:"json"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	if cfg.AuthMode == "" {
		cfg.AuthMode = AuthNone
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.AuthMode {
	case AuthNone, AuthToken:
	default:
		return errors.Errorf("PRYSMA_AUTH_MODE: unknown mode %q (want none|token)", c.AuthMode)
	}
	if c.WriteDebounce < 0 {
		return errors.New("PRYSMA_WRITE_DEBOUNCE must not be negative")
	}
	if c.WriteTimeout < 0 {
		return errors.New("PRYSMA_WRITE_TIMEOUT must not be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("PRYSMA_SESSION_TTL must be positive")
	}
	return nil
}
