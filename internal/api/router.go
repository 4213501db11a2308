// Package api is the ambient HTTP/metrics surface around a training run:
// health, prometheus metrics, and a push-only /training/status WebSocket,
// kept here only as thin observability, never as a control surface.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clawforge/skirmish/internal/leaderboard"
)

// RouterConfig holds the dependencies the status router needs.
type RouterConfig struct {
	Hub         *StatusHub
	Leaderboard *leaderboard.Store

	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig
	CORSOrigins     []string
	DisableLogging  bool
}

// NewRouter builds the status/observability router. It opens no
// listeners, so it is safe to use directly with httptest.NewServer. When
// cfg.RateLimiter is nil it creates its own IPRateLimiter, which starts
// that limiter's cleanup goroutine.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rlCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.With(rateLimiter.Middleware).Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.With(rateLimiter.MiddlewareFor(RouteClassLeaderboard)).
		Get("/training/leaderboard", func(w http.ResponseWriter, req *http.Request) {
			if cfg.Leaderboard == nil {
				http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cfg.Leaderboard.All())
		})

	if cfg.Hub != nil {
		r.With(rateLimiter.MiddlewareFor(RouteClassStatusUpgrade)).
			Get("/training/status", cfg.Hub.HandleWebSocket)
	}

	return r
}
