package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/ranktracker/internal/api/middleware"
	"github.com/mcoot/ranktracker/internal/api/request"
	"github.com/mcoot/ranktracker/internal/api/response"
	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/progression"
	"github.com/mcoot/ranktracker/internal/services/rankentry"
)

// RankEntryHandler handles rank entry and progression endpoints
type RankEntryHandler struct {
	entries     *rankentry.Service
	progression *progression.Service
	logger      *slog.Logger
}

// NewRankEntryHandler creates a new rank entry handler
func NewRankEntryHandler(entries *rankentry.Service, progression *progression.Service, logger *slog.Logger) *RankEntryHandler {
	return &RankEntryHandler{
		entries:     entries,
		progression: progression,
		logger:      logger,
	}
}

// List handles GET /api/v1/rankentries, optionally filtered by userId and gameId
func (h *RankEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	gameID, err := queryID(r, "gameId")
	if err != nil {
		WriteError(w, err)
		return
	}
	filter := model.RankEntryFilter{
		OwnerUserID: model.UserID(r.URL.Query().Get("userId")),
		GameID:      model.GameID(gameID),
	}

	details, err := h.entries.List(r.Context(), filter)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RankEntriesFromDetails(details, middleware.GetPrincipal(r.Context())))
}

// Get handles GET /api/v1/rankentries/{id}
func (h *RankEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	detail, err := h.entries.Get(r.Context(), model.RankEntryID(id))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RankEntryFromDetail(detail, middleware.GetPrincipal(r.Context())))
}

// GetForEdit handles GET /api/v1/rankentries/{id}/edit
func (h *RankEntryHandler) GetForEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	detail, err := h.entries.GetForEdit(r.Context(), principal, model.RankEntryID(id))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RankEntryFromDetail(detail, principal))
}

// Create handles POST /api/v1/rankentries
func (h *RankEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.RankEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	detail, err := h.entries.Create(r.Context(), principal, toInput(req))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.Created(w, fmt.Sprintf("/api/v1/rankentries/%d", detail.Entry.ID), response.RankEntryFromDetail(detail, principal))
}

// Update handles PUT /api/v1/rankentries/{id}
func (h *RankEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.RankEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if err := checkBodyID(id, req.ID); err != nil {
		WriteError(w, err)
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	if _, err := h.entries.Update(r.Context(), principal, model.RankEntryID(id), toInput(req)); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.NoContent(w)
}

// Delete handles DELETE /api/v1/rankentries/{id}
func (h *RankEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.entries.Delete(r.Context(), middleware.GetPrincipal(r.Context()), model.RankEntryID(id)); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.NoContent(w)
}

// Progression handles GET /api/v1/rankentries/progression?userId=&gameId=
func (h *RankEntryHandler) Progression(w http.ResponseWriter, r *http.Request) {
	gameID, err := queryID(r, "gameId")
	if err != nil {
		WriteError(w, err)
		return
	}
	userID := model.UserID(r.URL.Query().Get("userId"))

	points, err := h.progression.Progression(r.Context(), userID, model.GameID(gameID))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProgressionFromModel(points))
}

func toInput(req request.RankEntryRequest) rankentry.Input {
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	return rankentry.Input{
		Rank:        req.Rank,
		Date:        date,
		Description: req.Description,
		GameID:      model.GameID(req.GameID),
	}
}
