package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("KV_BACKEND", "")
	t.Setenv("SESSION_DURATION", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "sql", cfg.KVBackend)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionDuration)
	assert.True(t, cfg.RequireEmailVerification)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_TYPE", "Postgres")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "false")
	t.Setenv("APP_BASE_URL", "https://sathi.example.com/")
	t.Setenv("AUTH_RATE_LIMIT", "3")

	cfg := Load()

	assert.Equal(t, "9999", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.False(t, cfg.RequireEmailVerification)
	assert.Equal(t, "https://sathi.example.com", cfg.AppBaseURL)
	assert.Equal(t, 3, cfg.AuthRateLimit)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_DURATION", "forever")
	t.Setenv("EMAIL_DEBUG", "maybe")
	t.Setenv("AUTH_RATE_LIMIT", "lots")

	cfg := Load()

	assert.Equal(t, 7*24*time.Hour, cfg.SessionDuration)
	assert.False(t, cfg.EmailDebug)
	assert.Equal(t, 10, cfg.AuthRateLimit)
}
