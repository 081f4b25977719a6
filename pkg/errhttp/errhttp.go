// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to StatusFor for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/todoapp/pkg/antiforgery"
	"github.com/ghuser/todoapp/pkg/httpx"
	tododomain "github.com/ghuser/todoapp/services/todo/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// 5xx messages are replaced with the status text.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, false))
}

// StatusFor returns the HTTP status for err. Unrecognized errors are 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, tododomain.ErrInvalidInput):
		return http.StatusBadRequest // 400
	case errors.Is(err, tododomain.ErrInvalidItemID):
		return http.StatusNotFound // 404, malformed ids are reported as absent
	case errors.Is(err, tododomain.ErrItemNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, tododomain.ErrItemAlreadyCompleted):
		return http.StatusBadRequest // 400
	case errors.Is(err, antiforgery.ErrValidationFailed):
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
