package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clawforge/skirmish/internal/leaderboard"
)

func TestNewRouterHealthz(t *testing.T) {
	lb, err := leaderboard.Load(t.TempDir())
	if err != nil {
		t.Fatalf("leaderboard.Load: %v", err)
	}
	router := NewRouter(RouterConfig{Leaderboard: lb, DisableLogging: true})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", rec.Code)
	}
}

func TestNewRouterLeaderboardEndpoint(t *testing.T) {
	lb, err := leaderboard.Load(t.TempDir())
	if err != nil {
		t.Fatalf("leaderboard.Load: %v", err)
	}
	router := NewRouter(RouterConfig{Leaderboard: lb, DisableLogging: true})

	req := httptest.NewRequest(http.MethodGet, "/training/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /training/leaderboard, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected JSON content type, got %q", rec.Header().Get("Content-Type"))
	}
}

func TestNewRouterLeaderboardUnavailable(t *testing.T) {
	router := NewRouter(RouterConfig{DisableLogging: true})

	req := httptest.NewRequest(http.MethodGet, "/training/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when no leaderboard is configured, got %d", rec.Code)
	}
}

func TestNewRouterOmitsWebsocketRouteWithoutHub(t *testing.T) {
	router := NewRouter(RouterConfig{DisableLogging: true})

	req := httptest.NewRequest(http.MethodGet, "/training/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatal("expected /training/status to not resolve without a StatusHub")
	}
}
