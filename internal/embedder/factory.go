package embedder

import (
	"fmt"
	"os"
	"strconv"

	"github.com/healthcareplus/faqrag-go/internal/rag"
)

// Default embedding models per backend.
const (
	defaultOllamaModel = "nomic-embed-text"
	defaultOpenAIModel = "text-embedding-3-small"

	// defaultOllamaDimensions is the output dimension of nomic-embed-text.
	// Other Ollama models may differ — override with EMBEDDING_DIMENSIONS.
	defaultOllamaDimensions = 768
	// defaultOpenAIDimensions is the output dimension of text-embedding-3-small.
	defaultOpenAIDimensions = 1536
)

// DefaultDimensions returns the default embedding vector size for the given
// backend name. Callers that pre-configure the vector index (collection
// creation at ingest time) should use this rather than hardcoding a value.
// EMBEDDING_DIMENSIONS always takes precedence when set.
func DefaultDimensions(backend string) int {
	if v := getEnvInt("EMBEDDING_DIMENSIONS", 0); v > 0 {
		return v
	}
	switch backend {
	case "openai":
		return defaultOpenAIDimensions
	default:
		return defaultOllamaDimensions
	}
}

// Backend returns the effective embedding backend name resolved from
// EMBEDDING_PROVIDER (default: ollama).
func Backend() string {
	return getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")
}

// NewFromEnv constructs a rag.Embedder from environment variables.
//
//	EMBEDDING_PROVIDER   = ollama | openai (default: ollama)
//	EMBEDDING_MODEL      — overrides the backend's default model
//	EMBEDDING_ENDPOINT   — overrides the backend's default endpoint
//	EMBEDDING_API_KEY    — API key (openai; falls back to OPENAI_API_KEY)
//	EMBEDDING_DIMENSIONS — overrides the default vector size
//
// A missing required credential is a configuration error: the caller must
// treat it as fatal at startup rather than serve with a broken embedder.
func NewFromEnv() (rag.Embedder, error) {
	switch backend := Backend(); backend {
	case "ollama":
		host := os.Getenv("EMBEDDING_ENDPOINT")
		if host == "" {
			host = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		}
		return NewOllamaEmbedder(&OllamaConfig{
			Host:  host,
			Model: getEnvOrDefault("EMBEDDING_MODEL", defaultOllamaModel),
		}), nil

	case "openai":
		apiKey := os.Getenv("EMBEDDING_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("embedder: openai requires OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
		return NewOpenAIEmbedder(&OpenAIConfig{
			BaseURL:    os.Getenv("EMBEDDING_ENDPOINT"),
			APIKey:     apiKey,
			Model:      getEnvOrDefault("EMBEDDING_MODEL", defaultOpenAIModel),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", defaultOpenAIDimensions),
		}), nil

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q — valid values: ollama, openai", backend)
	}
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
