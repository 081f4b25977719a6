package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/ghuser/todoapp/pkg/antiforgery"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/session"
	pkgvalidator "github.com/ghuser/todoapp/pkg/validator"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/home.html"))

// Flash messages shown after a form post.
const (
	flashItemNotFound         = "That item no longer exists."
	flashItemAlreadyCompleted = "That item is already completed."
)

type homePage struct {
	List    *appsvcs.TodoListView
	Flashes []string
	Tokens  antiforgery.TokenSet
}

// addItemForm is the body of POST /home/additem.
type addItemForm struct {
	Text string `json:"text" validate:"notblank"`
}

// HomeHandler serves the HTML list page and its form posts.
type HomeHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

// NewHomeHandler returns a HomeHandler backed by the given services and
// session store.
func NewHomeHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *HomeHandler {
	return &HomeHandler{svc: svc, store: store, log: log}
}

// Index renders the list page. It must run behind antiforgery.IssueTokens.
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Todo.GetList(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	flashes, err := session.Flashes(w, r, h.store)
	if err != nil {
		h.log.WarnContext(r.Context(), "read flashes failed", "error", err)
	}

	tokens, _ := antiforgery.TokensFromCtx(r.Context())

	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, homePage{List: list, Flashes: flashes, Tokens: tokens}); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// AddItem handles POST /home/additem.
func (h *HomeHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	form := addItemForm{Text: r.PostFormValue("text")}
	if err := pkgvalidator.Validate(&form); err != nil {
		pkgvalidator.WriteValidationError(w, err)
		return
	}

	id, err := h.svc.Todo.AddItem(r.Context(), form.Text)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.log.InfoContext(r.Context(), "item added", "item_id", id)
	h.redirectHome(w, r)
}

// CompleteItem handles POST /home/completeitem.
func (h *HomeHandler) CompleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PostFormValue("id")
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
		h.flash(w, r, flashItemNotFound)
	case appsvcs.CompleteRejected:
		h.flash(w, r, flashItemAlreadyCompleted)
	}
	h.redirectHome(w, r)
}

// DeleteItem handles POST /home/deleteitem.
func (h *HomeHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PostFormValue("id")
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
		h.flash(w, r, flashItemNotFound)
	}
	h.redirectHome(w, r)
}

func (h *HomeHandler) flash(w http.ResponseWriter, r *http.Request, msg string) {
	if err := session.AddFlash(w, r, h.store, msg); err != nil {
		h.log.WarnContext(r.Context(), "add flash failed", "error", err)
	}
}

func (h *HomeHandler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}
