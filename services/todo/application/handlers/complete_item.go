package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
	tododomain "github.com/ghuser/todoapp/services/todo/domain"
)

// errBlankID rejects requests whose id is empty or whitespace.
var errBlankID = fmt.Errorf("%w: item id is required", tododomain.ErrInvalidInput)

// CompleteItemHandler handles POST /api/items/{id}/complete requests.
type CompleteItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewCompleteItemHandler returns a CompleteItemHandler backed by the given services.
func NewCompleteItemHandler(svc *appsvcs.Services, log logger.Logger) *CompleteItemHandler {
	return &CompleteItemHandler{svc: svc, log: log}
}

// Execute marks an item completed.
//
//	@Summary	Complete item
//	@Tags		items
//	@Produce	json
//	@Param		X-XSRF-TOKEN	header	string	true	"Anti-forgery request token"
//	@Param		id				path	string	true	"Item ID"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id}/complete [post]
func (h *CompleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		writeError(w, r, h.log, errBlankID)
		return
	}

	result, err := h.svc.Todo.CompleteItem(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	switch result {
	case appsvcs.CompleteNotFound:
		writeError(w, r, h.log, tododomain.ErrItemNotFound)
	case appsvcs.CompleteRejected:
		writeError(w, r, h.log, tododomain.ErrItemAlreadyCompleted)
	default:
		httpx.NoContent(w)
	}
}
