// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values shared across registrations.
const (
	// labelHandler is the "handler" label value used to partition metrics by
	// the logical endpoint name rather than the raw URL path.
	labelHandler = "handler"

	// Ask outcome label values.
	outcomeOK        = "ok"
	outcomeNoContext = "no_context"
	outcomeError     = "error"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// askRequestsTotal counts completed /api/ask requests, partitioned by
	// outcome: "ok", "no_context", or "error".
	askRequestsTotal *prometheus.CounterVec

	// askDurationSeconds records the wall-clock duration of each /api/ask
	// request, retrieval and generation included.
	askDurationSeconds *prometheus.HistogramVec

	// askConfidence records the confidence score of each answered question.
	askConfidence prometheus.Histogram

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default —
// this keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		askRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faqrag",
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Total number of /api/ask requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		askDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "faqrag",
			Subsystem: "ask",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of /api/ask requests, retrieval and generation included.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"outcome"}),

		askConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "faqrag",
			Subsystem: "ask",
			Name:      "confidence",
			Help:      "Retrieval confidence score of answered questions.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faqrag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "faqrag",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}
