package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/ranktracker/internal/api/apierr"
	httpmw "github.com/mcoot/ranktracker/internal/middleware"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// writeError writes err and logs it when it maps to a server error
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("request_id", httpmw.RequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	WriteError(w, err)
}

// pathID parses the {id} route variable
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewInvalidRequestError("id must be a positive integer")
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter; absent yields 0
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewInvalidRequestError(name + " must be a positive integer")
	}
	return id, nil
}

// checkBodyID enforces that a body id, when given, names the same record as the path
func checkBodyID(pathID, bodyID int64) error {
	if bodyID != 0 && bodyID != pathID {
		return NewInvalidRequestError("id in body does not match id in path")
	}
	return nil
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}
