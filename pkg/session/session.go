package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

// CookieName is the name of the session cookie.
const CookieName = "todoapp_session"

const maxAge = 86400 // 1 day

func cookieOptions(secure bool) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewStore returns a RedisStore when client is non-nil and a cookie-only
// store otherwise.
func NewStore(client *redis.Client, authKey, encryptionKey []byte, secureCookie bool) sessions.Store {
	if client != nil {
		return NewRedisStore(client, authKey, encryptionKey, secureCookie)
	}
	store := sessions.NewCookieStore(authKey, encryptionKey)
	store.Options = cookieOptions(secureCookie)
	return store
}

// AddFlash queues a one-shot message shown on the next page render.
func AddFlash(w http.ResponseWriter, r *http.Request, store sessions.Store, msg string) error {
	s, err := store.Get(r, CookieName)
	if err != nil {
		// A stale cookie under rotated keys decodes with an error but still
		// yields a usable new session.
		if s == nil {
			return fmt.Errorf("load session: %w", err)
		}
	}
	s.AddFlash(msg)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Flashes pops all queued messages. The session is saved only when there
// was something to pop.
func Flashes(w http.ResponseWriter, r *http.Request, store sessions.Store) ([]string, error) {
	s, err := store.Get(r, CookieName)
	if err != nil && s == nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	if err := s.Save(r, w); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(string); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}
