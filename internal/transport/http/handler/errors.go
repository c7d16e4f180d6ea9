package handler

import (
	"errors"
	"net/http"

	"github.com/go-notify-api/internal/domain"
)

// httpError maps domain sentinel errors to HTTP status codes. Unknown errors
// (including storage unavailability) are server errors.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
