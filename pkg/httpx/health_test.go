package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/todoapp/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

type healthBody struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func serveHealth(t *testing.T, checks httpx.HealthChecks) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	var body healthBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr, body
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	rr, body := serveHealth(t, httpx.HealthChecks{
		"store": &stubChecker{},
		"redis": &stubChecker{},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body.Status != "ok" {
		t.Errorf("status: got %q, want %q", body.Status, "ok")
	}
	if body.Dependencies["store"] != "ok" || body.Dependencies["redis"] != "ok" {
		t.Errorf("unexpected dependencies: %+v", body.Dependencies)
	}
}

func TestHealthHandler_OneDown(t *testing.T) {
	rr, body := serveHealth(t, httpx.HealthChecks{
		"store":     &stubChecker{},
		"event_bus": &stubChecker{err: errors.New("timeout")},
	})

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if body.Status != "degraded" || body.Dependencies["event_bus"] != "unreachable" {
		t.Errorf("unexpected response: %+v", body)
	}
	if body.Dependencies["store"] != "ok" {
		t.Errorf("healthy dependency reported as %q", body.Dependencies["store"])
	}
}

func TestHealthHandler_NoChecks(t *testing.T) {
	rr, body := serveHealth(t, httpx.HealthChecks{})

	if rr.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected ok with no dependencies, got %d %+v", rr.Code, body)
	}
}

func TestHealthHandler_ContentType(t *testing.T) {
	rr, _ := serveHealth(t, httpx.HealthChecks{"store": &stubChecker{}})

	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
}
