package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_FileValuesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  path: /tmp/test.db
scheduler:
  rate_per_level: 250
economy:
  income_per_hour: 30
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, int64(250), cfg.Scheduler.RatePerLevel)
	assert.Equal(t, int64(30), cfg.Economy.IncomePerHour)

	// Defaults
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.SweepInterval)
	assert.Equal(t, "header", cfg.Auth.Mode)
	assert.Equal(t, "X-Actor", cfg.Auth.Header)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  path: /tmp/file.db
`)
	t.Setenv("IMP_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("IMP_SERVER_PORT", "9090")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_DatabaseURL(t *testing.T) {
	path := writeConfig(t, "database:\n  type: postgres\n")
	t.Setenv("DATABASE_URL", "postgresql://u:p@db:5432/imperium")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@db:5432/imperium", cfg.Database.URL)
}

func TestLoadConfig_JWTModeNeedsSecret(t *testing.T) {
	path := writeConfig(t, "auth:\n  mode: jwt\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestValidateConfig_RejectsUnknownDatabaseType(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Type: "mysql"}}
	SetDefaults(cfg)

	assert.Error(t, ValidateConfig(cfg))
}

func TestUserConfigHandler_RoundTrip(t *testing.T) {
	h := NewUserConfigHandlerAt(filepath.Join(t.TempDir(), "nested", "config.json"))

	empty, err := h.Load()
	require.NoError(t, err)
	assert.Empty(t, empty.DefaultActor)

	require.NoError(t, h.SetDefaultActor("alice"))

	loaded, err := h.Load()
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.DefaultActor)
}
