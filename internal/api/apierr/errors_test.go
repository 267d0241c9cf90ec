package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/auth"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"validation", model.NewValidationError("rank", "out of range"), http.StatusBadRequest, CodeValidationFailed, "rank"},
		{"wrapped validation", fmt.Errorf("create: %w", model.NewValidationError("name", "required")), http.StatusBadRequest, CodeValidationFailed, "name"},
		{"bad game reference", fmt.Errorf("game 9: %w", model.ErrGameReferenceNotFound), http.StatusBadRequest, CodeGameReferenceNotFound, "gameId"},
		{"invalid request", NewInvalidRequestError("bad body"), http.StatusBadRequest, CodeInvalidRequest, ""},
		{"unauthenticated", model.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthorized, ""},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized, ""},
		{"forbidden", fmt.Errorf("update: %w", model.ErrForbidden), http.StatusForbidden, CodeForbidden, ""},
		{"game not found", model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound, ""},
		{"entry not found", model.ErrRankEntryNotFound, http.StatusNotFound, CodeRankEntryNotFound, ""},
		{"conflict", model.ErrConflict, http.StatusConflict, CodeConflict, ""},
		{"game in use", model.ErrGameInUse, http.StatusConflict, CodeGameInUse, ""},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternalError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.field, resp.Error.Field)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("password=hunter2"))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}
