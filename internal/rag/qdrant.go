package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection name to use.
	Collection string

	// VectorSize is the dimensionality of the embeddings stored in this
	// collection. It must match the embedding model used to populate it —
	// a mismatch is a configuration error, not something to tolerate at
	// query time.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements VectorStore backed by a Qdrant instance using
// cosine distance.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore creates a new QdrantStore, ensuring the target collection
// exists (creating it if necessary), and returns a ready-to-use VectorStore.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	store := &QdrantStore{client: client, cfg: cfg}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the Qdrant collection if it does not already exist.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", s.cfg.Collection, err)
	}

	return nil
}

// payloadKeyText is the reserved payload key holding the chunk text.
// All other payload keys are treated as chunk metadata.
const payloadKeyText = "text"

// Upsert stores a batch of chunks with their pre-computed embeddings.
// Chunk IDs are mapped to deterministic UUIDs, so re-ingesting a chunk with
// the same ID overwrites the stored point (last write wins).
func (s *QdrantStore) Upsert(ctx context.Context, chunks []Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("qdrant: %d chunks but %d embeddings", len(chunks), len(embeddings))
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, c := range chunks {
		payload := map[string]interface{}{
			payloadKeyText: c.Text,
		}
		for k, v := range c.Metadata {
			payload[k] = v
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(c.ID)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert failed: %w", err)
	}

	return nil
}

// Search performs a cosine similarity search and returns the topK closest
// matches ascending by distance. Qdrant reports cosine similarity directly;
// the adapter converts it back to a distance so the VectorStore boundary
// stays distance-based regardless of backend.
func (s *QdrantStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Match, error) {
	limit := uint64(topK)
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		m := Match{
			Distance: 1 - float64(r.Score),
			Metadata: make(map[string]string),
		}
		if p := r.Payload; p != nil {
			if v, ok := p[payloadKeyText]; ok {
				m.Text = v.GetStringValue()
			}
			for k, v := range p {
				if k != payloadKeyText {
					m.Metadata[k] = v.GetStringValue()
				}
			}
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// Count returns the exact number of stored chunks.
func (s *QdrantStore) Count(ctx context.Context) (uint64, error) {
	exact := true
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.cfg.Collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count failed: %w", err)
	}
	return n, nil
}

// Reset drops and recreates the collection. Ingestion-only: running it
// concurrently with serving traffic produces inconsistent search results.
func (s *QdrantStore) Reset(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.cfg.Collection); err != nil {
		return fmt.Errorf("qdrant: delete collection %q: %w", s.cfg.Collection, err)
	}
	return s.ensureCollection(ctx)
}

// Ping calls the Qdrant HealthCheck RPC. Used by the server's readiness probe.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// pointID maps an arbitrary chunk ID to a deterministic UUID accepted by
// Qdrant as a point ID.
func pointID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}
