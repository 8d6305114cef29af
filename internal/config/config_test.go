package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fabricbot/fabricbot/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fabricbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

// chdir moves into an empty directory so no stray .env or fabricbot.yaml is picked up.
func chdir(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Cleanup.Delay)
	assert.True(t, cfg.Cleanup.Retry)
	assert.Empty(t, cfg.Hooks.Channels)
	assert.Empty(t, cfg.RoleTable())
}

func TestLoad_File(t *testing.T) {
	chdir(t)
	path := writeConfig(t, `
log:
  level: debug
database:
  path: /tmp/bot.db
cleanup:
  delay: 2m
  retry: false
hooks:
  channels: ["111", "222"]
roles:
  admin: "900"
  moderator: "901"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/bot.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Minute, cfg.Cleanup.Delay)
	assert.False(t, cfg.Cleanup.Retry)
	assert.Equal(t, []string{"111", "222"}, cfg.Hooks.Channels)

	table := cfg.RoleTable()
	assert.Equal(t, "900", table.RoleID(identity.CategoryAdmin))
	assert.Equal(t, "901", table.RoleID(identity.CategoryModerator))
	assert.Equal(t, "", table.RoleID(identity.CategoryMuted))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	chdir(t)
	path := writeConfig(t, "discord:\n  token: from-file\ncleanup:\n  delay: 10s\n")
	t.Setenv("FABRICBOT_DISCORD_TOKEN", "from-env")
	t.Setenv("FABRICBOT_CLEANUP_DELAY", "45s")
	t.Setenv("FABRICBOT_HOOKS_CHANNELS", "1, 2,,3")
	t.Setenv("FABRICBOT_ROLES_MUTED", "777")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Discord.Token)
	assert.Equal(t, 45*time.Second, cfg.Cleanup.Delay)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.Hooks.Channels)
	assert.Equal(t, "777", cfg.RoleTable().RoleID(identity.CategoryMuted))
}

func TestLoad_DotEnv(t *testing.T) {
	chdir(t)
	require.NoError(t, os.WriteFile(".env", []byte("FABRICBOT_DISCORD_TOKEN=dotenv-token\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("FABRICBOT_DISCORD_TOKEN") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.Discord.Token)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownRole(t *testing.T) {
	chdir(t)
	path := writeConfig(t, "roles:\n  owner: \"1\"\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "roles.owner")
}

func TestLoad_RejectsNegativeDelay(t *testing.T) {
	chdir(t)
	path := writeConfig(t, "cleanup:\n  delay: -5s\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "cleanup.delay")
}

func TestParseCommaSeparated(t *testing.T) {
	assert.Nil(t, ParseCommaSeparated(""))
	assert.Equal(t, []string{"a", "b"}, ParseCommaSeparated(" a ,, b "))
}
