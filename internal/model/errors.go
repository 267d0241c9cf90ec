package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Game errors
	ErrGameNotFound = errors.New("game not found")
	ErrGameInUse    = errors.New("game is referenced by rank entries")

	// Rank entry errors
	ErrRankEntryNotFound     = errors.New("rank entry not found")
	ErrGameReferenceNotFound = errors.New("referenced game does not exist")

	// Access errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not permitted to modify this resource")

	// Write errors
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("record changed during update")
)

// ValidationError reports a field-level constraint violation.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
