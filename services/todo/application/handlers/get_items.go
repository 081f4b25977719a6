package handlers

import (
	"net/http"

	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// GetItemsHandler handles GET /api/items requests.
type GetItemsHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewGetItemsHandler returns a GetItemsHandler backed by the given services.
func NewGetItemsHandler(svc *appsvcs.Services, log logger.Logger) *GetItemsHandler {
	return &GetItemsHandler{svc: svc, log: log}
}

// Execute returns every item in insertion order.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Success	200	{object}	TodoListView
//	@Router		/items [get]
func (h *GetItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Todo.GetList(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
