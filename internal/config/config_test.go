package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"DB", "USER", "LOG_LEVEL", "LOG_FILE", "ADDR", "ALLOWED_ORIGINS", "HISTORY_WINDOW", "SESSION_IDLE"} {
		key := EnvPrefix + name
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, 40, cfg.HistoryWindow)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
	assert.Empty(t, cfg.DBPath)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestParseFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLIVE_USER", "maya")
	t.Setenv("OLIVE_HISTORY_WINDOW", "10")
	t.Setenv("OLIVE_ALLOWED_ORIGINS", "a.example,b.example")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "maya", cfg.User)
	assert.Equal(t, 10, cfg.HistoryWindow)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.AllowedOrigins)
}

func TestParseRejectsNegativeWindow(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLIVE_HISTORY_WINDOW", "-1")

	_, err := Parse()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLIVE_ADDR", ":9999")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OLIVE_LOG_LEVEL=debug\nOLIVE_ADDR=:1234\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9999", cfg.Addr, "the environment wins over the file")
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}
