// Package server implements the HTTP server that exposes the FAQ answer
// pipeline via a small JSON API. The server is started by the
// `faqrag serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/healthcareplus/faqrag-go/internal/logging"
)

// New constructs a Server from the answer engine, the vector index handle,
// and config.
func New(eng asker, index counter, cfg *Config) (*Server, error) {
	if eng == nil {
		return nil, fmt.Errorf("server: engine must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("server: index must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover a full LLM generation round trip.
		cfg.WriteTimeout = 2 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		engine:  eng,
		index:   index,
		cfg:     cfg,
		log:     cfg.Logger,
		pingers: cfg.Pingers,
		metrics: newServerMetrics(cfg.Registry),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Logger)
	s.stopRL = stopRL

	mux := http.NewServeMux()
	mux.Handle("POST /api/ask", s.instrument("ask", rl.middleware(http.HandlerFunc(s.handleAsk))))
	mux.Handle("GET /api/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.instrument("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(cfg.Logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleAsk handles POST /api/ask. It validates the question, runs the
// answer pipeline, records the exchange in the query log (best-effort), and
// returns the full result as JSON.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := s.engine.Query(r.Context(), req.Question)
	elapsed := time.Since(start)

	if err != nil {
		// Pipeline errors carry backend detail; clients get a generic message.
		log.Error("ask failed", slog.Any("error", err))
		s.metrics.askRequestsTotal.WithLabelValues(outcomeError).Inc()
		s.metrics.askDurationSeconds.WithLabelValues(outcomeError).Observe(elapsed.Seconds())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	outcome := outcomeOK
	if len(result.Sources) == 0 {
		outcome = outcomeNoContext
	}
	s.metrics.askRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.askDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
	s.metrics.askConfidence.Observe(result.Confidence)

	if s.cfg.History != nil {
		if err := s.cfg.History.Record(r.Context(), req.ConversationID, result.Question, result.Answer, result.Confidence); err != nil {
			log.Warn("query log write failed", slog.Any("error", err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Error("ask encode error", slog.Any("error", err))
	}
}
