package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-run or per-candidate labels).
var (
	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skirmish",
		Name:      "training_generation_duration_seconds",
		Help:      "Wall-clock duration of one training generation.",
		Buckets:   prometheus.DefBuckets,
	})

	generationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skirmish",
		Name:      "training_generations_total",
		Help:      "Total training generations completed across all modules and phases.",
	})

	leaderboardSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skirmish",
		Name:      "leaderboard_size",
		Help:      "Current number of rated composites on the leaderboard.",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skirmish",
		Name:      "connection_rejected_total",
		Help:      "Connections rejected by rate limiter or origin check.",
	}, []string{"reason"}) // bounded: "rate_limit", "origin", "invalid", "ws_limit"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skirmish",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is a path pattern, not the full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skirmish",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skirmish",
		Name:      "websocket_connections_active",
		Help:      "Currently active /training/status WebSocket connections.",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skirmish",
		Name:      "websocket_messages_total",
		Help:      "Total /training/status WebSocket messages sent.",
	})
)

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // should be "127.0.0.1:6060" outside trusted networks
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the internal observability server (pprof +
// prometheus + health). It should bind to localhost unless
// ALLOW_DEBUG_EXTERNAL is explicitly set.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("debug server forced to localhost")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("debug server listening on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordGeneration records one training generation's wall-clock duration.
func RecordGeneration(duration time.Duration) {
	generationDuration.Observe(duration.Seconds())
	generationsTotal.Inc()
}

// UpdateLeaderboardSize sets the current leaderboard entry count.
func UpdateLeaderboardSize(count int) {
	leaderboardSize.Set(float64(count))
}

// RecordConnectionRejected increments the rejection counter; reason must be
// one of "rate_limit", "origin", "invalid", "ws_limit".
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections sets the active WebSocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the WebSocket message counter.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
