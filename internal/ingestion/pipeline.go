package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/healthcareplus/faqrag-go/internal/rag"
)

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per stored chunk.
	// Flattened FAQ entries longer than this are split. Defaults to 1000
	// if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters to overlap between
	// consecutive splits of an oversized entry. Defaults to 100 if zero.
	ChunkOverlap int
}

// Pipeline orchestrates the load → flatten → embed → upsert flow for the
// clinic FAQ file.
type Pipeline struct {
	// embedder converts chunk text into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks.
	store rag.VectorStore

	// cfg holds the resolved pipeline configuration.
	cfg *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 100
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 10
	}

	return &Pipeline{embedder: embedder, store: store, cfg: cfg}, nil
}

// Ingest loads the FAQ file at dataPath, flattens and embeds its entries,
// resets the collection, and upserts everything. It returns the number of
// chunks stored. Progress is reported via the optional progress callback.
//
// Ingest replaces the whole collection; it must not run while the store is
// serving queries.
func (p *Pipeline) Ingest(ctx context.Context, dataPath string, progress func(msg string)) (int, error) {
	if progress == nil {
		progress = func(string) {}
	}

	faq, err := LoadFAQ(dataPath)
	if err != nil {
		return 0, err
	}
	progress(fmt.Sprintf("loaded FAQ data with %d top-level categories", len(faq)))

	entries := Flatten(faq)
	chunks := p.split(entries)
	progress(fmt.Sprintf("flattened into %d chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("ingestion: embedding failed: %w", err)
	}
	progress(fmt.Sprintf("generated %d embeddings", len(embeddings)))

	if err := p.store.Reset(ctx); err != nil {
		return 0, fmt.Errorf("ingestion: reset collection: %w", err)
	}

	if err := p.store.Upsert(ctx, chunks, embeddings); err != nil {
		return 0, fmt.Errorf("ingestion: upsert failed: %w", err)
	}

	count, err := p.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingestion: verify count: %w", err)
	}
	progress(fmt.Sprintf("vector store now contains %d documents", count))

	return len(chunks), nil
}

// split converts flattened FAQ entries into store chunks, breaking any
// entry longer than ChunkSize into overlapping windows. IDs are assigned
// sequentially ("faq-0", "faq-1", ...) so re-ingesting the same file
// overwrites the same points.
func (p *Pipeline) split(entries []FAQChunk) []rag.Chunk {
	var chunks []rag.Chunk
	next := 0
	for _, e := range entries {
		for _, text := range splitText(e.Text, p.cfg.ChunkSize, p.cfg.ChunkOverlap) {
			chunks = append(chunks, rag.Chunk{
				ID:   fmt.Sprintf("faq-%d", next),
				Text: text,
				Metadata: map[string]string{
					"category":    e.Category,
					"subcategory": e.Subcategory,
				},
			})
			next++
		}
	}
	return chunks
}

// splitText splits text into overlapping windows of at most size characters.
func splitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var out []string
	for start := 0; start < len(text); start += size - overlap {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		out = append(out, text[start:end])
		if end == len(text) {
			break
		}
	}
	return out
}
