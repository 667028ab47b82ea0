// ABOUTME: Tests for configuration defaults, env overrides, and validation
// ABOUTME: Uses t.Setenv and temporary .env files
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SCHOOLCRM_DB_PATH", "SCHOOLCRM_LISTEN_ADDR", "SCHOOLCRM_LOG_LEVEL", "SCHOOLCRM_LOG_FORMAT",
		"SCHOOLCRM_TOKEN_STORE", "SCHOOLCRM_TOKEN_PATH", "SCHOOLCRM_OAUTH_REDIRECT", "SCHOOLCRM_STAFF_LEAD",
		"SCHOOLCRM_CALENDAR_RATE", "SCHOOLCRM_CALENDAR_BURST", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missing(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath(), cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "file", cfg.TokenStore)
	assert.Equal(t, 1.0, cfg.CalendarRate)
	assert.Equal(t, 5, cfg.CalendarBurst)
	assert.False(t, cfg.CalendarConfigured())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHOOLCRM_DB_PATH", "/tmp/crm.db")
	t.Setenv("SCHOOLCRM_LOG_LEVEL", "DEBUG")
	t.Setenv("SCHOOLCRM_TOKEN_STORE", "charm")
	t.Setenv("SCHOOLCRM_CALENDAR_RATE", "2.5")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load(missing(t))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/crm.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "charm", cfg.TokenStore)
	assert.Equal(t, 2.5, cfg.CalendarRate)
	assert.True(t, cfg.CalendarConfigured())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SCHOOLCRM_STAFF_LEAD=Dana\nSCHOOLCRM_LISTEN_ADDR=:9090\n"), 0600))
	t.Cleanup(func() {
		_ = os.Unsetenv("SCHOOLCRM_STAFF_LEAD")
		_ = os.Unsetenv("SCHOOLCRM_LISTEN_ADDR")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Dana", cfg.StaffLead)
	assert.Equal(t, ":9090", cfg.ListenAddr)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHOOLCRM_TOKEN_STORE", "vault")

	_, err := Load(missing(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHOOLCRM_TOKEN_STORE")

	clearEnv(t)
	t.Setenv("SCHOOLCRM_LOG_FORMAT", "xml")
	_, err = Load(missing(t))
	assert.Error(t, err)
}
