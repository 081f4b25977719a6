package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
	tododomain "github.com/ghuser/todoapp/services/todo/domain"
)

// DeleteItemHandler handles DELETE /api/items/{id} requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, log logger.Logger) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, log: log}
}

// Execute removes an item.
//
//	@Summary	Delete item
//	@Tags		items
//	@Produce	json
//	@Param		X-XSRF-TOKEN	header	string	true	"Anti-forgery request token"
//	@Param		id				path	string	true	"Item ID"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		writeError(w, r, h.log, errBlankID)
		return
	}

	deleted, err := h.svc.Todo.DeleteItem(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if !deleted {
		writeError(w, r, h.log, tododomain.ErrItemNotFound)
		return
	}
	httpx.NoContent(w)
}
