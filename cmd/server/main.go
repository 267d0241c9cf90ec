package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/ranktracker/internal/api"
	"github.com/mcoot/ranktracker/internal/config"
	"github.com/mcoot/ranktracker/internal/factory"
	"github.com/mcoot/ranktracker/internal/services/auth"
	"github.com/mcoot/ranktracker/internal/services/game"
	redisstorage "github.com/mcoot/ranktracker/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	policy, err := game.ParseDeletePolicy(cfg.DeletePolicy)
	if err != nil {
		logger.Error("invalid GAME_DELETE_POLICY", slog.String("error", err.Error()))
		os.Exit(1)
	}

	authCfg := auth.DefaultConfig()
	authCfg.Secret = cfg.AuthSecret
	authCfg.Issuer = cfg.AuthIssuer
	authCfg.TokenTTL = cfg.AuthTokenTTL

	// Build factory config from environment
	factoryCfg := factory.Config{
		Logger:       logger,
		StorageType:  cfg.StorageType,
		SQLitePath:   cfg.SQLitePath,
		AuthConfig:   authCfg,
		DeletePolicy: policy,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		if cfg.RedisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Storage.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		Metrics:            app.Metrics,
		AuthService:        app.AuthService,
		UserService:        app.UserService,
		GameService:        app.GameService,
		RankEntryService:   app.RankEntryService,
		ProgressionService: app.ProgressionService,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return
		}
	}

	logger.Info("server stopped")
}
