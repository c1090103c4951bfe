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
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8082, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Rewards.TextMessage)
	assert.Equal(t, 15, cfg.Rewards.RichMessage)
	assert.Equal(t, 25, cfg.Rewards.Meditation)
	assert.Equal(t, 50, cfg.Rewards.EventCreated)
	assert.Equal(t, 10, cfg.Rewards.EventJoined)
	assert.True(t, cfg.Rewards.GrantOnDuplicateJoin)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  env: local
database:
  driver: mysql
  host: db.internal
rewards:
  event_joined: 20
  grant_on_duplicate_join: false
session:
  idle_ttl: 10m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Rewards.EventJoined)
	assert.False(t, cfg.Rewards.GrantOnDuplicateJoin)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTTL)
	// untouched keys keep defaults
	assert.Equal(t, 50, cfg.Rewards.EventCreated)
}

func TestLoad_EnvWins(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REWARD_TEXT_MESSAGE", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 7, cfg.Rewards.TextMessage)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: oracle\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_SecretRequiredInProduction(t *testing.T) {
	cfg := Default()
	cfg.Server.Env = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "s3cr3t-value"
	assert.NoError(t, cfg.Validate())
}

func TestMask(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"abc", "****"},
		{"abcdef", "ab**ef"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, mask(tt.input))
	}
}
