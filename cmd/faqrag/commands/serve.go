package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/healthcareplus/faqrag-go/internal/embedder"
	"github.com/healthcareplus/faqrag-go/internal/logging"
	"github.com/healthcareplus/faqrag-go/internal/server"
	"github.com/healthcareplus/faqrag-go/internal/store"
)

// NewServeCmd constructs the `faqrag serve` command, which starts the HTTP
// API server.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the faqrag HTTP API server",
		Long: `Start the faqrag HTTP server.

The server exposes:
  POST /api/ask     answer a question from the FAQ knowledge base
  GET  /api/health  liveness plus vector index state
  GET  /api/ready   dependency readiness probes
  GET  /metrics     Prometheus metrics

Examples:
  faqrag serve
  faqrag serve --port 9000
  LLM_PROVIDER=ollama faqrag serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("LLM_PROVIDER")))

			p, err := buildPipeline(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer p.Close()

			// Open the query log. FAQRAG_HISTORY_DB overrides the default
			// path (~/.faqrag/history.db). Set to "disabled" to disable.
			var history store.QueryLog
			dbPath := os.Getenv("FAQRAG_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = store.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					h, hErr := store.Open(dbPath)
					if hErr != nil {
						log.Warn("history: failed to open query log, disabling", slog.Any("error", hErr))
					} else {
						history = h
						defer func() { _ = h.Close() }()
						log.Info("history: query log opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via FAQRAG_HISTORY_DB=disabled")
			}

			srv, err := server.New(p.Engine, p.Store, &server.Config{
				Host:   host,
				Port:   port,
				Logger: log,
				Pingers: []server.Pinger{
					server.NewEmbedderPinger(p.Embedder, embedder.Backend()),
					server.NewIndexPinger(p.Store),
				},
				History: history,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "TCP port to listen on")

	return cmd
}
