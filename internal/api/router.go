package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/ranktracker/internal/api/handler"
	"github.com/mcoot/ranktracker/internal/api/middleware"
	httpmw "github.com/mcoot/ranktracker/internal/middleware"
	"github.com/mcoot/ranktracker/internal/services/auth"
	"github.com/mcoot/ranktracker/internal/services/game"
	"github.com/mcoot/ranktracker/internal/services/progression"
	"github.com/mcoot/ranktracker/internal/services/rankentry"
	"github.com/mcoot/ranktracker/internal/services/user"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	Metrics            *httpmw.Metrics
	AuthService        *auth.Service
	UserService        *user.Service
	GameService        *game.Service
	RankEntryService   *rankentry.Service
	ProgressionService *progression.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.UserService, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.GameService, cfg.Logger)
	rankEntryHandler := handler.NewRankEntryHandler(cfg.RankEntryService, cfg.ProgressionService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService, cfg.UserService, cfg.Logger)
	loggingMiddleware := httpmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, cfg.Metrics)

	// Prometheus scrape endpoint sits outside the versioned API
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(cfg.Metrics.Instrument)
	}

	// User routes
	users := api.PathPrefix("/users").Subrouter()
	users.Use(authMiddleware)
	users.HandleFunc("", userHandler.List).Methods(http.MethodGet)
	users.HandleFunc("/me", userHandler.GetMe).Methods(http.MethodGet)

	// Game routes
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.List).Methods(http.MethodGet)
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/{id:[0-9]+}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id:[0-9]+}", gameHandler.Update).Methods(http.MethodPut)
	games.HandleFunc("/{id:[0-9]+}", gameHandler.Delete).Methods(http.MethodDelete)
	games.HandleFunc("/{id:[0-9]+}/edit", gameHandler.GetForEdit).Methods(http.MethodGet)

	// Rank entry routes
	entries := api.PathPrefix("/rankentries").Subrouter()
	entries.Use(authMiddleware)
	entries.HandleFunc("", rankEntryHandler.List).Methods(http.MethodGet)
	entries.HandleFunc("", rankEntryHandler.Create).Methods(http.MethodPost)
	entries.HandleFunc("/progression", rankEntryHandler.Progression).Methods(http.MethodGet)
	entries.HandleFunc("/{id:[0-9]+}", rankEntryHandler.Get).Methods(http.MethodGet)
	entries.HandleFunc("/{id:[0-9]+}", rankEntryHandler.Update).Methods(http.MethodPut)
	entries.HandleFunc("/{id:[0-9]+}", rankEntryHandler.Delete).Methods(http.MethodDelete)
	entries.HandleFunc("/{id:[0-9]+}/edit", rankEntryHandler.GetForEdit).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
