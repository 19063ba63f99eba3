package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/healthcareplus/faqrag-go/internal/embedder"
	"github.com/healthcareplus/faqrag-go/internal/engine"
	"github.com/healthcareplus/faqrag-go/internal/provider"
	"github.com/healthcareplus/faqrag-go/internal/rag"
)

// Retrieval defaults shared by serve and ask.
const (
	defaultTopK      = 3
	defaultThreshold = 0.6
)

// openStore connects to Qdrant using the standard env surface, sizing the
// collection's vector space from the configured embedding backend.
func openStore(ctx context.Context, log *slog.Logger) (*rag.QdrantStore, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", "clinic-faq")
	vectorSize := uint64(embedder.DefaultDimensions(embedder.Backend())) //nolint:gosec // dimensions are bounded

	if v := getEnvInt("EMBEDDING_DIMENSIONS", 0); v > 0 {
		vectorSize = uint64(v) //nolint:gosec // dimensions are bounded
	}

	store, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}

	log.Info("qdrant store ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)
	return store, nil
}

// pipeline bundles the wired answer-pipeline components so serve and ask
// can share construction. Close releases the vector store connection.
type pipeline struct {
	// Engine is the assembled answer engine.
	Engine *engine.Engine
	// Store is the Qdrant handle, kept for health checks and probes.
	Store *rag.QdrantStore
	// Embedder is the embedding client, kept for readiness probes.
	Embedder rag.Embedder
}

// Close releases the pipeline's vector store connection.
func (p *pipeline) Close() { _ = p.Store.Close() }

// buildPipeline assembles the full answer pipeline from the environment:
// embedder → retriever → provider → engine.
func buildPipeline(ctx context.Context, log *slog.Logger) (*pipeline, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised", slog.String("backend", embedder.Backend()))

	store, err := openStore(ctx, log)
	if err != nil {
		return nil, err
	}

	retriever, err := rag.NewThresholdRetriever(emb, store,
		getEnvInt("TOP_K_RESULTS", defaultTopK),
		getEnvFloat("SIMILARITY_THRESHOLD", defaultThreshold),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	llm, err := provider.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialise provider: %w", err)
	}
	log.Info("provider initialised", slog.String("backend", llm.Name()))

	eng, err := engine.New(retriever, llm, engine.Config{
		ClinicName:  os.Getenv("CLINIC_NAME"),
		ClinicPhone: os.Getenv("CLINIC_PHONE"),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &pipeline{Engine: eng, Store: store, Embedder: emb}, nil
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat returns the float64 value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
