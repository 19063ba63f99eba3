// Package rag defines the interfaces and data types for the retrieval side
// of the FAQ answering pipeline: vector storage, embedding, and
// threshold-filtered document retrieval. Concrete implementations (Qdrant,
// the embedder backends) satisfy these interfaces so the query engine never
// depends on a specific backend.
package rag

import (
	"context"
	"errors"
)

// ErrEmbedding marks a failure to compute an embedding for a query or chunk.
// Retrieval cannot proceed without a query vector, so errors wrapping this
// sentinel are propagated to the caller rather than degraded to an empty
// result set.
var ErrEmbedding = errors.New("embedding failed")

// Chunk is a unit of corpus knowledge written at ingest time.
// Chunks are immutable once stored; their lifecycle is owned by the
// ingestion pipeline (created on ingest, destroyed on reset).
type Chunk struct {
	// ID is the unique identifier for this chunk.
	ID string

	// Text is the raw text content of the chunk.
	Text string

	// Metadata holds arbitrary key-value pairs (category, subcategory, etc.).
	Metadata map[string]string
}

// Match is a single nearest-neighbor hit at the vector store boundary.
// Distance is the cosine distance of the hit from the query vector; results
// are returned ascending by distance (closest first).
type Match struct {
	// Text is the stored chunk text.
	Text string

	// Distance is the cosine distance in [0.0, 1.0] (0 = identical).
	Distance float64

	// Metadata is the chunk metadata recorded at ingest time.
	Metadata map[string]string
}

// Document is a retrieved, threshold-filtered chunk handed to the answer
// generator. Documents are created per query and never persisted.
type Document struct {
	// Content is a copy of the matched chunk's text.
	Content string `json:"content"`

	// Metadata is a copy of the matched chunk's metadata.
	Metadata map[string]string `json:"metadata"`

	// Similarity is 1 − distance, rounded to 3 decimals, in [0.0, 1.0].
	Similarity float64 `json:"similarity_score"`
}

// VectorStore is the interface for persisting and searching chunk embeddings.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Upsert stores a batch of chunks with their pre-computed embeddings.
	// The embeddings slice must be parallel to chunks — embeddings[i] is the
	// vector for chunks[i]. Re-using an existing ID overwrites the stored
	// chunk (last write wins).
	Upsert(ctx context.Context, chunks []Chunk, embeddings [][]float32) error

	// Search returns the topK nearest neighbors for the query embedding,
	// ascending by distance. Fewer than topK results may be returned.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Match, error)

	// Count returns the number of stored chunks. Used for health reporting only.
	Count(ctx context.Context) (uint64, error)

	// Reset drops and recreates the collection. It belongs to the ingestion
	// pipeline exclusively and must not run concurrently with serving traffic.
	Reset(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice. Failures wrap
	// [ErrEmbedding].
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever is the high-level interface the query engine uses to fetch
// relevant context for a question. It combines embedding and vector search.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the documents relevant to the question, ordered by
	// descending similarity. An empty slice means no relevant context was
	// found; it is not an error.
	Retrieve(ctx context.Context, question string) ([]Document, error)
}
