package handlers

import (
	"net/http"

	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	pkgvalidator "github.com/ghuser/todoapp/pkg/validator"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// PostItemHandler handles POST /api/items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services, log logger.Logger) *PostItemHandler {
	return &PostItemHandler{svc: svc, log: log}
}

// Execute creates a new item from a JSON string body.
//
//	@Summary		Add item
//	@Description	Creates an open item. The body is the item text as a JSON string.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			X-XSRF-TOKEN	header		string	true	"Anti-forgery request token"
//	@Param			text			body		string	true	"Item text"
//	@Success		201				{object}	AddItemResponse
//	@Header			201				{string}	Location	"/api/items/{id}"
//	@Failure		400				{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	text, ok := pkgvalidator.DecodeJSON[string](w, r)
	if !ok {
		return
	}

	id, err := h.svc.Todo.AddItem(r.Context(), *text)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "item added", "item_id", id)
	httpx.Created(w, "/api/items/"+id, AddItemResponse{ID: id})
}
