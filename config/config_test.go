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
		"CARNET_ROOT", "CARNET_ADDR", "CARNET_TOKEN", "CARNET_LOG_LEVEL",
		"CARNET_LOG_PRETTY", "CARNET_STATE_DIR", "CARNET_DATABASE_URL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("CARNET_STATE_DIR", "/state")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/state", cfg.StateDir)
	assert.Empty(t, cfg.Root)
	assert.Empty(t, cfg.Token)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(
		"root: /notes\naddr: 0.0.0.0:9000\nlog_level: debug\nlog_pretty: true\n"), 0644))
	t.Setenv("CARNET_ADDR", "127.0.0.1:7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/notes", cfg.Root)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"CARNET_ROOT=/from/dotenv\nCARNET_TOKEN=secret\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", cfg.Root)
	assert.Equal(t, "secret", cfg.Token)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load("nope.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	t.Setenv("CARNET_LOG_LEVEL", "loud")
	_, err := Load("")
	assert.ErrorContains(t, err, "invalid log level")

	t.Setenv("CARNET_LOG_LEVEL", "info")
	t.Setenv("CARNET_LOG_PRETTY", "maybe")
	_, err = Load("")
	assert.ErrorContains(t, err, "CARNET_LOG_PRETTY")
}
