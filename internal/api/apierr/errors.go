package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/ranktracker/internal/model"
	"github.com/mcoot/ranktracker/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeGameReferenceNotFound = "GAME_REFERENCE_NOT_FOUND"
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeGameNotFound          = "GAME_NOT_FOUND"
	CodeRankEntryNotFound     = "RANK_ENTRY_NOT_FOUND"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeGameInUse             = "GAME_IN_USE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return &httpError{http.StatusBadRequest, APIError{CodeValidationFailed, verr.Message, verr.Field}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeValidationFailed, Message: "Validation failed"}}
	case errors.Is(err, model.ErrGameReferenceNotFound):
		return &httpError{http.StatusBadRequest, APIError{CodeGameReferenceNotFound, "Referenced game does not exist", "gameId"}}
	case errors.Is(err, model.ErrUnauthenticated):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
	case errors.Is(err, model.ErrForbidden):
		return &httpError{http.StatusForbidden, APIError{Code: CodeForbidden, Message: "Only the owner or an admin can do this"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeGameNotFound, Message: "Game not found"}}
	case errors.Is(err, model.ErrRankEntryNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeRankEntryNotFound, Message: "Rank entry not found"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeUserNotFound, Message: "User not found"}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{Code: CodeConflict, Message: "Record changed during update, retry"}}
	case errors.Is(err, model.ErrGameInUse):
		return &httpError{http.StatusConflict, APIError{Code: CodeGameInUse, Message: "Game still has rank entries"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
