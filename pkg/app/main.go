package app

import (
	"time"

	"github.com/gorilla/sessions"

	"github.com/ghuser/todoapp/pkg/antiforgery"
	"github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/events"
	"github.com/ghuser/todoapp/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to all service Routes calls during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler; use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "completing item", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to complete", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db           *database.Database // nil selects the in-memory item store
	Logger       logger.Logger
	EventBus     *events.EventBus   // nil without Postgres
	Redis        *cache.RedisClient // nil when REDIS_URL is empty
	SessionStore sessions.Store     // nil in worker process
	Antiforgery  *antiforgery.Guard // nil in worker process
	Clock        func() time.Time   // nil means time.Now
}

// Now returns the current time from Clock.
func (a *Application) Now() time.Time {
	if a.Clock == nil {
		return time.Now()
	}
	return a.Clock()
}
