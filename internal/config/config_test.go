package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"RANKTRACKER_PORT", "STORAGE_TYPE", "REDIS_URL", "SQLITE_PATH", "AUTH_SECRET",
		"AUTH_ISSUER", "AUTH_TOKEN_TTL", "LOG_LEVEL", "GAME_DELETE_POLICY",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "ranktracker.db", cfg.SQLitePath)
	assert.Equal(t, "ranktracker", cfg.AuthIssuer)
	assert.Equal(t, 24*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, "restrict", cfg.DeletePolicy)
	assert.Empty(t, cfg.AuthSecret)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RANKTRACKER_PORT", "9090")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("AUTH_TOKEN_TTL", "90m")
	t.Setenv("GAME_DELETE_POLICY", "cascade")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "redis", cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "s3cret", cfg.AuthSecret)
	assert.Equal(t, 90*time.Minute, cfg.AuthTokenTTL)
	assert.Equal(t, "cascade", cfg.DeletePolicy)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("RANKTRACKER_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"))
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, Config{LogLevel: tt.level}.SlogLevel())
		})
	}
}
