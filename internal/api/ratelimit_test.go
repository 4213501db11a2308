package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestIPRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 3, CleanupInterval: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("expected request %d within burst to be allowed", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("expected a request beyond the burst to be rejected")
	}
}

func TestIPRateLimiterTracksIndependentBuckets(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	if !rl.Allow("1.1.1.1") {
		t.Fatal("expected the first IP's first request to be allowed")
	}
	if !rl.Allow("2.2.2.2") {
		t.Fatal("expected a different IP's bucket to be independent")
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("expected the first IP's bucket to already be exhausted")
	}
}

func TestIPRateLimiterGetStats(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	rl.Allow("3.3.3.3")
	rl.Allow("3.3.3.3")
	stats := rl.GetStats()
	if stats["allowed"] != 1 || stats["rejected"] != 1 {
		t.Fatalf("expected 1 allowed and 1 rejected, got %+v", stats)
	}
}

func TestIPRateLimiterCleanupRemovesStaleEntries(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Millisecond})
	defer rl.Stop()

	rl.Allow("4.4.4.4")
	key := bucketKey("4.4.4.4", RouteClassDefault)
	if _, ok := rl.limiters.Load(key); !ok {
		t.Fatal("expected an entry to exist right after a request")
	}
	time.Sleep(5 * time.Millisecond)
	rl.cleanup()
	if _, ok := rl.limiters.Load(key); ok {
		t.Fatal("expected cleanup to remove a stale entry older than 2x the cleanup interval")
	}
}

func TestIPRateLimiterMiddlewareRejectsOverLimit(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	called := 0
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	}))

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "5.5.5.5:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	handler.ServeHTTP(rec, req)

	if called != 1 {
		t.Fatalf("expected the handler to run exactly once before the limit kicks in, got %d", called)
	}
}

func TestGetClientIPPrefersForwardedFor(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.10.10.10")
	req.RemoteAddr = "127.0.0.1:5555"
	if got := GetClientIP(req); got != "9.9.9.9" {
		t.Fatalf("expected the first X-Forwarded-For address, got %q", got)
	}
}

func TestGetClientIPFallsBackToRealIPThenRemoteAddr(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "8.8.8.8")
	req.RemoteAddr = "127.0.0.1:5555"
	if got := GetClientIP(req); got != "8.8.8.8" {
		t.Fatalf("expected X-Real-IP to be used, got %q", got)
	}

	req2, _ := http.NewRequest(http.MethodGet, "/", nil)
	req2.RemoteAddr = "6.6.6.6:9999"
	if got := GetClientIP(req2); got != "6.6.6.6" {
		t.Fatalf("expected RemoteAddr's host to be used, got %q", got)
	}
}

func TestWebSocketRateLimiterEnforcesPerIPCap(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)
	if !wrl.Allow("1.1.1.1") || !wrl.Allow("1.1.1.1") {
		t.Fatal("expected the first two connections to be allowed")
	}
	if wrl.Allow("1.1.1.1") {
		t.Fatal("expected the third connection to be rejected")
	}
	wrl.Release("1.1.1.1")
	if !wrl.Allow("1.1.1.1") {
		t.Fatal("expected a connection slot to free up after Release")
	}
	if wrl.GetConnectionCount("1.1.1.1") != 2 {
		t.Fatalf("expected a connection count of 2, got %d", wrl.GetConnectionCount("1.1.1.1"))
	}
}

func TestAllowRouteTracksIndependentBucketsPerClass(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	if !rl.AllowRoute("7.7.7.7", RouteClassStatusUpgrade) {
		t.Fatal("expected the first status-upgrade request to be allowed")
	}
	if rl.AllowRoute("7.7.7.7", RouteClassStatusUpgrade) {
		t.Fatal("expected the status-upgrade bucket to already be exhausted")
	}
	if !rl.AllowRoute("7.7.7.7", RouteClassLeaderboard) {
		t.Fatal("expected the same IP's leaderboard bucket to be independent of its status-upgrade bucket")
	}
}

func TestMiddlewareForRejectsWithClassSpecificMessage(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	handler := rl.MiddlewareFor(RouteClassStatusUpgrade)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req, _ := http.NewRequest(http.MethodGet, "/training/status", nil)
	req.RemoteAddr = "11.11.11.11:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the second request to be rejected, got status %d", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, "training status") {
		t.Fatalf("expected a training-status-specific rejection message, got %q", got)
	}
}

func TestIsAllowedOriginLocalhostAndExactMatches(t *testing.T) {
	if IsAllowedOrigin("") {
		t.Fatal("expected an empty origin to be rejected")
	}
	if !IsAllowedOrigin("http://localhost:4321") {
		t.Fatal("expected any localhost port to be allowed")
	}
	if IsAllowedOrigin("http://evil.example.com") {
		t.Fatal("expected an unlisted origin to be rejected")
	}
}
