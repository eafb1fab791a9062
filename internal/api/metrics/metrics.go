// Package metrics defines and registers all custom Prometheus metrics for the
// portal. It is the single source of truth for metric names, labels, and help
// strings. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Outbound request metrics ─────────────────────────────────────────────────

// BackendRequestsTotal counts requests issued by the request executors.
// Labels:
//   - client: executor name ("backend", "geo")
//   - method: HTTP method
//   - status: HTTP status code, or "error" for transport failures
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of outbound requests, by client, method and status.",
	},
	[]string{"client", "method", "status"},
)

// BackendRequestDuration measures outbound request latency.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of outbound requests from send to decoded response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"client"},
)

// ── Session metrics ──────────────────────────────────────────────────────────

// SessionExpiredTotal counts forced logouts caused by a 401 response.
var SessionExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expired_total",
		Help:      "Total number of sessions cleared after the backend answered 401.",
	},
)

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - backend: "mock" or "remote"
//   - action: "login" or "register"
//   - result: "success", "rejected" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and registration attempts.",
	},
	[]string{"backend", "action", "result"},
)

// SessionEventsDropped counts session events discarded because the notifier
// queue was full.
var SessionEventsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_dropped_total",
		Help:      "Total number of session events dropped by a full notifier queue.",
	},
)

// ── Location metrics ─────────────────────────────────────────────────────────

// LocationFallbackTotal counts province lookups served from the built-in list.
var LocationFallbackTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_fallback_total",
		Help:      "Total number of province lookups answered from the fallback list.",
	},
)

// LocationFanoutFailures counts per-province district lookups skipped during search.
var LocationFanoutFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_fanout_failures_total",
		Help:      "Total number of district lookups that failed during location search.",
	},
)
