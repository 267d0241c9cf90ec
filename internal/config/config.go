package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration read from the environment
type Config struct {
	Port         int           `env:"RANKTRACKER_PORT"   envDefault:"8080"`
	StorageType  string        `env:"STORAGE_TYPE"       envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL"`
	SQLitePath   string        `env:"SQLITE_PATH"        envDefault:"ranktracker.db"`
	AuthSecret   string        `env:"AUTH_SECRET"`
	AuthIssuer   string        `env:"AUTH_ISSUER"        envDefault:"ranktracker"`
	AuthTokenTTL time.Duration `env:"AUTH_TOKEN_TTL"     envDefault:"24h"`
	LogLevel     string        `env:"LOG_LEVEL"          envDefault:"info"`
	DeletePolicy string        `env:"GAME_DELETE_POLICY" envDefault:"restrict"`
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv parses environment variables into target using struct tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, falling back to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
