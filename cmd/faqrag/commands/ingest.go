package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/healthcareplus/faqrag-go/internal/embedder"
	"github.com/healthcareplus/faqrag-go/internal/ingestion"
	"github.com/healthcareplus/faqrag-go/internal/logging"
)

// NewIngestCmd constructs the `faqrag ingest` command, which loads the
// clinic FAQ file into the Qdrant vector store.
func NewIngestCmd() *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index the clinic FAQ file into the vector store",
		Long: `Load the nested clinic FAQ JSON file, flatten it into chunks, embed each
chunk, and replace the contents of the Qdrant collection.

Ingestion resets the collection first — run it while the server is stopped.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: clinic-faq)
  EMBEDDING_PROVIDER   Embedding backend: ollama, openai (default: ollama)
  EMBEDDING_*          Backend-specific overrides (see README)

Examples:
  faqrag ingest
  faqrag ingest --data ./data/clinic_faq.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if dataPath == "" {
				dataPath = getEnvOrDefault("FAQ_DATA_PATH", "./data/clinic_faq.json")
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}
			log.Info("embedder initialised", slog.String("backend", embedder.Backend()))

			store, err := openStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer store.Close()

			pipeline, err := ingestion.NewPipeline(emb, store, &ingestion.Config{
				ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
				ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			log.Info("starting ingestion", slog.String("data", dataPath))

			n, err := pipeline.Ingest(ctx, dataPath, func(msg string) {
				log.Info(msg)
			})
			if err != nil {
				return fmt.Errorf("ingest: pipeline failed: %w", err)
			}

			log.Info("ingestion complete", slog.Int("chunks", n))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Path to the clinic FAQ JSON file (default: $FAQ_DATA_PATH or ./data/clinic_faq.json)")

	return cmd
}
