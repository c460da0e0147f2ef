package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ARCADE_JWT_SECRET", "a-long-enough-test-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(1000), cfg.StartingTokens)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ARCADE_JWT_SECRET", "a-long-enough-test-secret")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("ARCADE_SESSION_TTL", "1h")
	t.Setenv("ARCADE_STARTING_TOKENS", "250")
	t.Setenv("ARCADE_OWNER_USERNAME", "boss")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(250), cfg.StartingTokens)
	assert.Equal(t, "boss", cfg.OwnerUsername)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("ARCADE_JWT_SECRET", "short")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ARCADE_JWT_SECRET", "a-long-enough-test-secret")
	t.Setenv("ARCADE_BCRYPT_COST", "2")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("ARCADE_BCRYPT_COST", "ten")
	_, err = Load()
	assert.Error(t, err)
}

func unsetSecret(t *testing.T) {
	t.Helper()
	t.Setenv("ARCADE_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("ARCADE_JWT_SECRET"))
}

func TestLoadDevSecretOnlyInDevelopment(t *testing.T) {
	unsetSecret(t)
	t.Setenv("ARCADE_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)

	t.Setenv("ARCADE_ENV", "production")
	_, err = Load()
	assert.ErrorContains(t, err, "ARCADE_JWT_SECRET")

	t.Setenv("ARCADE_JWT_SECRET", "a-long-enough-prod-secret")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}
