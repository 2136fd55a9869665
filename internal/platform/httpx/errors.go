// Package httpx provides HTTP response utilities following RFC7807 problem
// details and the error mapping shared by all handlers.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors surfaced by the authorization core. Authentication
// failures deliberately map to one uniform Unauthorized response so callers
// cannot distinguish a missing tenant header from a bad token or an unknown
// principal.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
)

// RespondError maps domain errors to HTTP responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
