package server

import (
	"context"
	"fmt"

	"github.com/healthcareplus/faqrag-go/internal/rag"
)

// EmbedderPinger probes an embedding backend by embedding a single short
// string. It satisfies the Pinger interface and is used by GET /api/ready.
// Embedding one token is cheap on every supported backend.
type EmbedderPinger struct {
	// embedder is the embedding client to probe.
	embedder rag.Embedder
	// name identifies the backend in readiness responses (e.g. "ollama").
	name string
}

// NewEmbedderPinger constructs an EmbedderPinger for the given embedder and
// backend name.
func NewEmbedderPinger(e rag.Embedder, name string) *EmbedderPinger {
	return &EmbedderPinger{embedder: e, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *EmbedderPinger) Name() string { return p.name }

// Ping embeds a single short string to verify the backend is reachable and
// the configured model exists.
func (p *EmbedderPinger) Ping(ctx context.Context) error {
	vectors, err := p.embedder.Embed(ctx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}
	if len(vectors) == 0 {
		return fmt.Errorf("embed returned no vectors")
	}
	return nil
}

// IndexPinger probes the vector index using its native health check.
// It satisfies the Pinger interface and is used by GET /api/ready.
type IndexPinger struct {
	// store is the vector store to probe.
	store interface {
		Ping(ctx context.Context) error
	}
}

// NewIndexPinger constructs an IndexPinger for the given store.
// *rag.QdrantStore satisfies the required Ping method.
func NewIndexPinger(store interface {
	Ping(ctx context.Context) error
}) *IndexPinger {
	return &IndexPinger{store: store}
}

// Name returns the dependency label used in readiness responses.
func (p *IndexPinger) Name() string { return "qdrant" }

// Ping delegates to the store's health check.
// Returns nil if the index is reachable, or a descriptive error otherwise.
func (p *IndexPinger) Ping(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
