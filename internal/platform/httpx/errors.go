package httpx

import (
	"errors"
	"net/http"

	"github.com/lattice-erp/lattice/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Not-found, not-owned
// and wrong-state all surface as 404; internals never leak to the caller.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrDuplicate),
		errors.Is(err, shared.ErrInsufficientStock):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	default:
		JSON(w, http.StatusInternalServerError, Envelope{Status: "error", Message: "Server error"})
	}
}
