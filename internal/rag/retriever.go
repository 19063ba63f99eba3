package rag

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/healthcareplus/faqrag-go/internal/logging"
)

// ThresholdRetriever implements the Retriever interface by combining an
// Embedder and a VectorStore. It embeds the question at retrieval time,
// converts each hit's distance to a similarity score, and keeps only hits at
// or above the configured similarity threshold.
type ThresholdRetriever struct {
	// embedder converts the question text to a dense vector.
	embedder Embedder

	// store performs the vector similarity search.
	store VectorStore

	// topK is the maximum number of candidates requested from the store.
	topK int

	// threshold is the minimum similarity a candidate must reach to be kept.
	threshold float64
}

// NewThresholdRetriever constructs a ThresholdRetriever from the given
// Embedder and VectorStore. topK defaults to 3 and threshold to 0.6 when
// their zero values are passed.
func NewThresholdRetriever(embedder Embedder, store VectorStore, topK int, threshold float64) (*ThresholdRetriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("rag: store must not be nil")
	}
	if topK <= 0 {
		topK = 3
	}
	if threshold <= 0 {
		threshold = 0.6
	}
	return &ThresholdRetriever{
		embedder:  embedder,
		store:     store,
		topK:      topK,
		threshold: threshold,
	}, nil
}

// Retrieve embeds the question, searches the store, and returns the
// threshold-filtered documents in descending-similarity order. Callers may
// rely on the first document being the best match.
//
// An embedding failure is returned to the caller (wrapping [ErrEmbedding]);
// a search failure is logged and degraded to an empty result set so the
// engine answers "insufficient context" instead of failing the request.
func (r *ThresholdRetriever) Retrieve(ctx context.Context, question string) ([]Document, error) {
	embeddings, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("rag: %w: %w", ErrEmbedding, err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("rag: %w: embedder returned no vector for question", ErrEmbedding)
	}

	matches, err := r.store.Search(ctx, embeddings[0], r.topK)
	if err != nil {
		logging.FromContext(ctx).Warn("rag: vector search failed, returning no documents",
			slog.Any("error", err),
		)
		return nil, nil
	}

	// Matches arrive ascending by distance, which is descending by
	// similarity — the order is preserved, never re-sorted.
	docs := make([]Document, 0, len(matches))
	for _, m := range matches {
		similarity := Round3(1 - m.Distance)
		if similarity < r.threshold {
			continue
		}
		docs = append(docs, Document{
			Content:    m.Text,
			Metadata:   m.Metadata,
			Similarity: similarity,
		})
	}

	return docs, nil
}

// Round3 rounds v to 3 decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
