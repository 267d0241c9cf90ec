package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcoot/ranktracker/internal/api/middleware"
	"github.com/mcoot/ranktracker/internal/api/request"
	"github.com/mcoot/ranktracker/internal/api/response"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/game"
)

// GameHandler handles game catalogue endpoints
type GameHandler struct {
	games  *game.Service
	logger *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *game.Service, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		games:  games,
		logger: logger,
	}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.games.List(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GamesFromDetails(details, middleware.GetPrincipal(r.Context())))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	detail, err := h.games.Get(r.Context(), model.GameID(id))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromDetail(detail, middleware.GetPrincipal(r.Context())))
}

// GetForEdit handles GET /api/v1/games/{id}/edit
func (h *GameHandler) GetForEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	detail, err := h.games.GetForEdit(r.Context(), principal, model.GameID(id))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromDetail(detail, principal))
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	detail, err := h.games.Create(r.Context(), principal, game.Input{Name: req.Name})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.Created(w, fmt.Sprintf("/api/v1/games/%d", detail.Game.ID), response.GameFromDetail(detail, principal))
}

// Update handles PUT /api/v1/games/{id}
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if err := checkBodyID(id, req.ID); err != nil {
		WriteError(w, err)
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	if _, err := h.games.Update(r.Context(), principal, model.GameID(id), game.Input{Name: req.Name}); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.NoContent(w)
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.games.Delete(r.Context(), middleware.GetPrincipal(r.Context()), model.GameID(id)); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.NoContent(w)
}
