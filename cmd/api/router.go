package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ghuser/todoapp/pkg/antiforgery"
	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/telemetry"
	todoApi "github.com/ghuser/todoapp/services/todo/application/api"
	appsvcs "github.com/ghuser/todoapp/services/todo/application/services"
)

// testingTokenPath serves anti-forgery tokens to test clients outside production.
const testingTokenPath = "/_testing/get-xsrf-token"

// newRouter assembles the middleware stack and every route.
func newRouter(cfg *config.Config, a *app.Application, svcs *appsvcs.Services, metrics http.Handler, checks httpx.HealthChecks) *chi.Mux {
	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      !cfg.IsProduction(),
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			CORSAllowedHeaders: []string{antiforgery.HeaderName},
		},
		httpx.Middlewares{
			Recovery: logger.Recovery(a.Logger, !cfg.IsProduction()),
			Sentry:   telemetry.SentryMiddleware(),
			Otel:     otelhttp.NewMiddleware(cfg.ServiceName),
			Logger:   logger.Middleware(a.Logger),
		},
	)

	r.Get("/health", httpx.HealthHandler(checks))
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if cfg.ExposeTestingEndpoints() {
		r.Get(testingTokenPath, antiforgery.TokensHandler(a.Antiforgery, a.Logger))
	}
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, a, svcs)
	})
	todoApi.HomeRoutes(r, a, svcs)
	return r
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application, svcs *appsvcs.Services) {
	todoApi.TodoRoutes(r, a, svcs)
}
