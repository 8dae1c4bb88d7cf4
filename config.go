package accounts

import (
	"encoding/base64"
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// Config carries the runtime configuration for token issuance and the
// account purge. Values come from the environment; defaults match the
// original deployment (24h tokens, 30 day remember-me tokens, purge at
// 01:00 local time).
type Config struct {
	TokenValidityInSeconds              int    `env:"AUTH_TOKEN_VALIDITY_SECONDS" envDefault:"86400"`
	TokenValidityInSecondsForRememberMe int    `env:"AUTH_TOKEN_VALIDITY_SECONDS_REMEMBER_ME" envDefault:"2592000"`
	Secret                              string `env:"AUTH_TOKEN_SECRET"`
	Base64Secret                        string `env:"AUTH_TOKEN_BASE64_SECRET"`
	Issuer                              string `env:"AUTH_TOKEN_ISSUER" envDefault:"dershop"`
	PurgeHour                           int    `env:"ACCOUNTS_PURGE_HOUR" envDefault:"1"`
}

// LoadConfig parses configuration from environment variables and validates
// it. A missing or undecodable signing secret is fatal: callers are expected
// to abort startup on error.
func LoadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to parse accounts configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the process cannot run
// without.
func (c *Config) Validate() error {
	if _, err := c.SigningKey(); err != nil {
		return err
	}

	if c.TokenValidityInSeconds <= 0 || c.TokenValidityInSecondsForRememberMe <= 0 {
		return goerrors.New("token validity must be positive", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	if c.PurgeHour < 0 || c.PurgeHour > 23 {
		return goerrors.New("purge hour must be between 0 and 23", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	return nil
}

// SigningKey resolves the shared token secret. Base64Secret wins when set;
// otherwise the raw secret bytes are used. A key of at least 256 bits is
// recommended.
func (c *Config) SigningKey() ([]byte, error) {
	if c.Base64Secret != "" {
		key, err := base64.StdEncoding.DecodeString(c.Base64Secret)
		if err != nil {
			return nil, ErrMisconfiguredSecret
		}
		return key, nil
	}

	if c.Secret == "" {
		return nil, ErrMisconfiguredSecret
	}

	return []byte(c.Secret), nil
}

// TokenValidity returns the configured token lifetime
func (c *Config) TokenValidity() time.Duration {
	return time.Duration(c.TokenValidityInSeconds) * time.Second
}

// TokenValidityForRememberMe returns the extended token lifetime
func (c *Config) TokenValidityForRememberMe() time.Duration {
	return time.Duration(c.TokenValidityInSecondsForRememberMe) * time.Second
}
