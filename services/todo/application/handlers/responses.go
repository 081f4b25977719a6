package handlers

import (
	"net/http"

	"github.com/ghuser/todoapp/pkg/errhttp"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/telemetry"
)

// AddItemResponse is returned on successful item creation.
type AddItemResponse struct {
	ID string `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
} // @name AddItemResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found"`
} // @name ErrorResponse

// writeError logs and reports unexpected failures before delegating the
// response to errhttp.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	if errhttp.StatusFor(err) >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", "error", err)
		telemetry.CaptureError(r.Context(), err)
	}
	errhttp.WriteError(w, err)
}
