package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/todoapp/pkg/antiforgery"
	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/services/todo/application/handlers"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// TodoRoutes registers the JSON item endpoints on the provided chi router.
// Mount it under /api. Mutating requests require a valid anti-forgery token.
func TodoRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	r.Route("/items", func(r chi.Router) {
		r.Use(antiforgery.Protect(a.Antiforgery, a.Logger))
		r.Get("/", handlers.NewGetItemsHandler(svcs, a.Logger).Execute)
		r.Post("/", handlers.NewPostItemHandler(svcs, a.Logger).Execute)
		r.Get("/{id}", handlers.NewGetItemHandler(svcs, a.Logger).Execute)
		r.Post("/{id}/complete", handlers.NewCompleteItemHandler(svcs, a.Logger).Execute)
		r.Delete("/{id}", handlers.NewDeleteItemHandler(svcs, a.Logger).Execute)
	})
}

// HomeRoutes registers the HTML page and its form posts at the site root.
func HomeRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	home := handlers.NewHomeHandler(svcs, a.SessionStore, a.Logger)

	r.With(antiforgery.IssueTokens(a.Antiforgery, a.Logger)).Get("/", home.Index)
	r.Route("/home", func(r chi.Router) {
		r.Use(antiforgery.Protect(a.Antiforgery, a.Logger))
		r.Post("/additem", home.AddItem)
		r.Post("/completeitem", home.CompleteItem)
		r.Post("/deleteitem", home.DeleteItem)
	})
}
