package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/ghuser/todoapp/pkg/antiforgery"
	"github.com/ghuser/todoapp/pkg/config"
)

const redacted = "[redacted]"

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		TracesSampleRate: 0.2,
		BeforeSend:       scrubEvent,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// scrubEvent strips the session and anti-forgery material from request data.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	if event.Request.Cookies != "" {
		event.Request.Cookies = redacted
	}
	for k := range event.Request.Headers {
		switch http.CanonicalHeaderKey(k) {
		case "Cookie", "Set-Cookie", http.CanonicalHeaderKey(antiforgery.HeaderName):
			event.Request.Headers[k] = redacted
		}
	}
	// Form bodies carry the request token field.
	event.Request.Data = ""
	return event
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware returns a net/http middleware that captures panics.
// Repanic: true so the outer Recovery middleware still writes the 500.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return h.Handle
}

// CaptureError reports err on the request's Sentry hub, falling back to the
// global hub. Cancelled requests are not reported. No-op when Sentry is not
// initialized.
func CaptureError(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
