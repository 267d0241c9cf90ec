package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/ranktracker/internal/dependencies/clock"
	httpmw "github.com/mcoot/ranktracker/internal/middleware"
	"github.com/mcoot/ranktracker/internal/services/auth"
	"github.com/mcoot/ranktracker/internal/services/game"
	"github.com/mcoot/ranktracker/internal/services/progression"
	"github.com/mcoot/ranktracker/internal/services/rankentry"
	"github.com/mcoot/ranktracker/internal/services/user"
	"github.com/mcoot/ranktracker/internal/storage"
	"github.com/mcoot/ranktracker/internal/storage/memory"
	redisstorage "github.com/mcoot/ranktracker/internal/storage/redis"
	sqlitestorage "github.com/mcoot/ranktracker/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	AuthService        *auth.Service
	UserService        *user.Service
	GameService        *game.Service
	RankEntryService   *rankentry.Service
	ProgressionService *progression.Service

	// Observability
	Metrics *httpmw.Metrics
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// AuthConfig holds configuration for the auth service; Secret is required
	AuthConfig auth.Config
	// DeletePolicy controls game deletion while rank entries reference it
	// If empty, defaults to restrict
	DeletePolicy game.DeletePolicy
	// MetricsRegistry receives the HTTP metrics (optional)
	// If nil, a fresh registry is created
	MetricsRegistry *prometheus.Registry
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.New()

	app, err := newWithDependencies(store, clk, cfg.AuthConfig, cfg.DeletePolicy, cfg.MetricsRegistry, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("application wired",
		slog.String("storage", storageTypeOrDefault(cfg.StorageType)),
		slog.String("delete_policy", string(app.GameService.DeletePolicy())),
	)
	return app, nil
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

func openStorage(cfg Config) (storage.Storage, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlitestorage.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	authCfg auth.Config,
	policy game.DeletePolicy,
	registry *prometheus.Registry,
	logger *slog.Logger,
) (*App, error) {
	if policy == "" {
		policy = game.DeletePolicyRestrict
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	authService, err := auth.New(authCfg, clk)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	userService := user.New(store, clk, logger)
	gameService := game.New(store, userService, policy, logger)
	rankEntryService := rankentry.New(store, userService, clk, logger)
	progressionService := progression.New(store)

	return &App{
		Storage:            store,
		Clock:              clk,
		AuthService:        authService,
		UserService:        userService,
		GameService:        gameService,
		RankEntryService:   rankEntryService,
		ProgressionService: progressionService,
		Metrics:            httpmw.NewMetrics(registry),
	}, nil
}
