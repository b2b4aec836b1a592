// Package apperr defines the error taxonomy shared by all core components.
// Callers classify failures with errors.Is and map them to HTTP statuses with
// Status.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPayloadTooLarge    = errors.New("payload too large")
)

// Status maps an error to its stable HTTP status code. Unclassified errors are
// treated as storage failures, matching the propagation policy: anything the
// core did not explicitly reject is a backend problem.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the short human-readable message for an error. Internal
// detail is never exposed here; debug output is the handler layer's concern.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrValidation):
		return "validation failed"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConflict):
		return "conflict, please retry"
	case errors.Is(err, ErrPayloadTooLarge):
		return "payload too large"
	default:
		return "storage unavailable"
	}
}
