package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sanchari2026", cfg.AdminSecret)
	assert.Equal(t, "sanchari", cfg.LoginOverrideSecret)
	assert.True(t, cfg.OverrideEnabled())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOGIN_OVERRIDE_ENABLED", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SEED_ON_START", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.SeedOnStart)
	assert.False(t, cfg.OverrideEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
