package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 45, cfg.Contacts.PageSize)
	assert.Equal(t, 500, cfg.Contacts.MaxPageSize)
	assert.Equal(t, 2*time.Minute, cfg.Contacts.CacheTTL)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONTACTS_PAGE_SIZE", "20")
	t.Setenv("CONTACTS_MAX_PAGE_SIZE", "10")
	t.Setenv("CONTACTS_CACHE_TTL", "bogus")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("AUTH_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Contacts.PageSize)
	assert.Equal(t, 20, cfg.Contacts.MaxPageSize)
	assert.Equal(t, 2*time.Minute, cfg.Contacts.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Auth.Enabled)
}
