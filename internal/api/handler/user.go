package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/ranktracker/internal/api/middleware"
	"github.com/mcoot/ranktracker/internal/api/response"
	"github.com/mcoot/ranktracker/internal/services/user"
)

// UserHandler handles user directory endpoints
type UserHandler struct {
	users  *user.Service
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *user.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUser(r.Context())
	if u == nil {
		WriteError(w, NewUnauthorizedError())
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(u))
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	resp := make([]response.User, len(users))
	for i, u := range users {
		resp[i] = response.UserFromModel(u)
	}
	response.JSON(w, http.StatusOK, resp)
}
