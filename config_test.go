package accounts_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/dershop/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "env-secret-of-decent-length-here")

	cfg, err := accounts.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 86400, cfg.TokenValidityInSeconds)
	assert.Equal(t, 2592000, cfg.TokenValidityInSecondsForRememberMe)
	assert.Equal(t, "dershop", cfg.Issuer)
	assert.Equal(t, 1, cfg.PurgeHour)
	assert.Equal(t, 24*time.Hour, cfg.TokenValidity())
	assert.Equal(t, 30*24*time.Hour, cfg.TokenValidityForRememberMe())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "env-secret-of-decent-length-here")
	t.Setenv("AUTH_TOKEN_VALIDITY_SECONDS", "3600")
	t.Setenv("ACCOUNTS_PURGE_HOUR", "4")

	cfg, err := accounts.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.TokenValidity())
	assert.Equal(t, 4, cfg.PurgeHour)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "")
	t.Setenv("AUTH_TOKEN_BASE64_SECRET", "")

	_, err := accounts.LoadConfig()
	require.ErrorIs(t, err, accounts.ErrMisconfiguredSecret)
}

func TestSigningKeyPrefersBase64(t *testing.T) {
	raw := []byte("raw-key-material-32-bytes-long!!")
	cfg := &accounts.Config{
		TokenValidityInSeconds:              86400,
		TokenValidityInSecondsForRememberMe: 2592000,
		Secret:                              "ignored-when-base64-is-set",
		Base64Secret:                        base64.StdEncoding.EncodeToString(raw),
	}

	key, err := cfg.SigningKey()
	require.NoError(t, err)
	assert.Equal(t, raw, key)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*accounts.Config)
		wantErr bool
	}{
		{"valid", func(*accounts.Config) {}, false},
		{"zero validity", func(c *accounts.Config) { c.TokenValidityInSeconds = 0 }, true},
		{"negative remember-me validity", func(c *accounts.Config) { c.TokenValidityInSecondsForRememberMe = -1 }, true},
		{"purge hour out of range", func(c *accounts.Config) { c.PurgeHour = 24 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTokenConfig()
			cfg.PurgeHour = 1
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
