package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://studymate.example.com")
	t.Setenv("IDENTITY_MODE", "refresh")
	t.Setenv("IDENTITY_SCOPES", "openid, email")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("BIND_HOST", "::")
	t.Setenv("PORT", "8080")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := Load()

	assert.Equal(t, "https://studymate.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "/documents/list", cfg.Backend.ListPath)
	assert.Equal(t, "/ai/text-to-speech", cfg.Backend.SpeechPath)
	assert.Equal(t, "refresh", cfg.Identity.Mode)
	assert.Equal(t, []string{"openid", "email"}, cfg.Identity.Scopes)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.False(t, cfg.MinIO.Enabled())
	assert.Equal(t, "[::]:8080", cfg.ListenAddr())
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("IDENTITY_SCOPES", "")
	t.Setenv("BIND_HOST", "")
	t.Setenv("PORT", "")

	cfg := Load()

	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "code", cfg.Identity.Mode)
	assert.Equal(t, []string{"openid", "email", "profile"}, cfg.Identity.Scopes)
	assert.Equal(t, 900, cfg.ClipURLTTLSec)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Equal(t, 60, cfg.SessionIdleMin)
	assert.False(t, cfg.CookieSecure)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	t.Setenv(key, "")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"

	t.Setenv(key, "a,,b , c")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvList(key, nil))

	t.Setenv(key, " , ")
	assert.Equal(t, []string{"x"}, getEnvList(key, []string{"x"}))
}
