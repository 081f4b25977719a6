package antiforgery

import (
	"context"
	"net/http"

	"github.com/ghuser/todoapp/pkg/httpx"
	"github.com/ghuser/todoapp/pkg/logger"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const tokensKey contextKey = "antiforgery_tokens"

// TokensFromCtx returns the token set placed on the context by IssueTokens.
func TokensFromCtx(ctx context.Context) (TokenSet, bool) {
	ts, ok := ctx.Value(tokensKey).(TokenSet)
	return ts, ok
}

// WithTokens returns a new context carrying ts.
func WithTokens(ctx context.Context, ts TokenSet) context.Context {
	return context.WithValue(ctx, tokensKey, ts)
}

// Protect is a chi middleware that validates POST, PUT, PATCH and DELETE
// requests and answers 400 before the handler runs when validation fails.
// Safe methods pass through untouched.
func Protect(g *Guard, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			if err := g.Validate(r); err != nil {
				log.WarnContext(r.Context(), "antiforgery validation failed",
					"method", r.Method,
					"path", r.URL.Path,
					"error", err,
				)
				httpx.JSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IssueTokens is a chi middleware that issues tokens for pages rendering
// forms and stores them on the request context.
func IssueTokens(g *Guard, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ts, err := g.Issue(w, r)
			if err != nil {
				log.ErrorContext(r.Context(), "antiforgery issue failed", "error", err)
				httpx.JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTokens(r.Context(), ts)))
		})
	}
}

// TokensHandler serves the token set as JSON and sets the cookie. Mount it
// only outside production; it lets test clients bootstrap a valid pair.
func TokensHandler(g *Guard, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts, err := g.Issue(w, r)
		if err != nil {
			log.ErrorContext(r.Context(), "antiforgery issue failed", "error", err)
			httpx.JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		httpx.JSON(w, http.StatusOK, ts)
	}
}
