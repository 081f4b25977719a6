package session

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
)

var (
	testAuthKey = []byte(strings.Repeat("a", 32))
	testEncKey  = []byte(strings.Repeat("b", 32))
)

func carryCookies(from *httptest.ResponseRecorder, to *http.Request) {
	for _, c := range from.Result().Cookies() {
		to.AddCookie(c)
	}
}

func TestCookieStore_FlashRoundTrip(t *testing.T) {
	store := NewStore(nil, testAuthKey, testEncKey, false)

	w1 := httptest.NewRecorder()
	r1 := httptest.NewRequest(http.MethodPost, "/home/additem", nil)
	if err := AddFlash(w1, r1, store, "Item not found"); err != nil {
		t.Fatalf("AddFlash: %v", err)
	}

	cookies := w1.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected one %s cookie, got %v", CookieName, cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	carryCookies(w1, r2)
	msgs, err := Flashes(w2, r2, store)
	if err != nil {
		t.Fatalf("Flashes: %v", err)
	}
	if len(msgs) != 1 || msgs[0] != "Item not found" {
		t.Fatalf("unexpected flashes: %v", msgs)
	}

	w3 := httptest.NewRecorder()
	r3 := httptest.NewRequest(http.MethodGet, "/", nil)
	carryCookies(w2, r3)
	msgs, err = Flashes(w3, r3, store)
	if err != nil {
		t.Fatalf("Flashes: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("flashes must be consumed once, got %v", msgs)
	}
}

func TestFlashes_NoCookie(t *testing.T) {
	store := NewStore(nil, testAuthKey, testEncKey, false)
	w := httptest.NewRecorder()
	msgs, err := Flashes(w, httptest.NewRequest(http.MethodGet, "/", nil), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgs != nil {
		t.Fatalf("expected no flashes, got %v", msgs)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("no cookie should be written when there is nothing to pop")
	}
}

func TestFlashes_TamperedCookie(t *testing.T) {
	store := NewStore(nil, testAuthKey, testEncKey, false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "tampered"})

	msgs, err := Flashes(httptest.NewRecorder(), r, store)
	if err != nil {
		t.Fatalf("tampered cookie should fall back to an empty session, got %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("unexpected flashes: %v", msgs)
	}
}

func TestNewStore_SecureFlag(t *testing.T) {
	store := NewStore(nil, testAuthKey, testEncKey, true)
	w := httptest.NewRecorder()
	if err := AddFlash(w, httptest.NewRequest(http.MethodPost, "/", nil), store, "hi"); err != nil {
		t.Fatalf("AddFlash: %v", err)
	}
	if c := w.Result().Cookies()[0]; !c.Secure {
		t.Error("expected Secure cookie")
	}
}

// Integration tests: skipped unless REDIS_URL is set.
func TestRedisStoreIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close() //nolint:errcheck

	store := NewStore(client, testAuthKey, testEncKey, false)
	if _, ok := store.(*RedisStore); !ok {
		t.Fatalf("expected *RedisStore, got %T", store)
	}

	w1 := httptest.NewRecorder()
	if err := AddFlash(w1, httptest.NewRequest(http.MethodPost, "/", nil), store, "stored in redis"); err != nil {
		t.Fatalf("AddFlash: %v", err)
	}

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	carryCookies(w1, r2)
	msgs, err := Flashes(httptest.NewRecorder(), r2, store)
	if err != nil {
		t.Fatalf("Flashes: %v", err)
	}
	if len(msgs) != 1 || msgs[0] != "stored in redis" {
		t.Fatalf("unexpected flashes: %v", msgs)
	}
}
