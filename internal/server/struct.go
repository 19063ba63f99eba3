package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/healthcareplus/faqrag-go/internal/engine"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8000).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	// Must cover a full LLM generation round trip.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// Registry is the Prometheus registry metrics are registered into.
	// If nil, a private registry is created; /metrics serves whichever is used.
	Registry *prometheus.Registry
	// History is an optional query log. When set, every answered question is
	// recorded best-effort; log failures never fail the request.
	History recorder
}

// asker is the interface handleAsk calls to answer a question.
// *engine.Engine satisfies it; tests inject a fake.
type asker interface {
	// Query answers one question and returns the assembled result.
	Query(ctx context.Context, question string) (*engine.Result, error)
}

// counter is the interface handleHealth uses to probe the vector index.
// rag.VectorStore satisfies it; tests inject a fake.
type counter interface {
	// Count returns the number of documents in the index.
	Count(ctx context.Context) (uint64, error)
}

// recorder is the interface the server uses to persist answered questions.
// store.QueryLog satisfies it; tests inject a fake.
type recorder interface {
	// Record persists a single exchange.
	Record(ctx context.Context, conversationID, question, answer string, confidence float64) error
}

// Server is the HTTP server that exposes the FAQ answer pipeline.
type Server struct {
	// engine answers questions; set to *engine.Engine in production.
	engine asker
	// index is the vector index probed by GET /api/health.
	index counter
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// Question is the user's natural-language question.
	Question string `json:"question"`
	// ConversationID optionally groups questions from one caller session.
	// It is recorded in the query log only; it does not affect the answer.
	ConversationID string `json:"conversation_id,omitempty"`
}
