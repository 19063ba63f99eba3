// Package config provides YAML-based configuration for faqrag.
// Configuration is loaded with a layered precedence: defaults → YAML file → env vars.
// Environment variables always win, so existing workflows are unaffected.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. FAQRAG_CONFIG environment variable
//  3. ~/.faqrag/config.yaml
//  4. ./faqrag.yaml
//
// If no file is found the system runs entirely from env vars (backwards compatible).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
// Field names use yaml tags that mirror the env var naming (lowercase, underscored).
type Config struct {
	// LLM configures the answer-generation provider.
	LLM LLMConfig `yaml:"llm"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Qdrant configures the Qdrant vector store connection.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Retrieval configures the retrieval stage.
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Ingestion configures the FAQ ingestion pipeline.
	Ingestion IngestionConfig `yaml:"ingestion"`

	// Clinic configures the clinic identity used in prompts and fallbacks.
	Clinic ClinicConfig `yaml:"clinic"`

	// Server configures the HTTP server.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// History configures query log persistence.
	History HistoryConfig `yaml:"history"`
}

// LLMConfig holds answer-generation provider settings.
type LLMConfig struct {
	// Provider selects the backend: anthropic, openai, ollama.
	Provider string `yaml:"provider"`

	// MaxTokens is the maximum number of tokens in the answer.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls response randomness (0.0–1.0).
	Temperature float32 `yaml:"temperature"`

	// Anthropic holds Anthropic-specific settings.
	Anthropic AnthropicConfig `yaml:"anthropic"`

	// OpenAI holds OpenAI-specific settings.
	OpenAI OpenAIConfig `yaml:"openai"`

	// Ollama holds Ollama-specific settings.
	Ollama OllamaConfig `yaml:"ollama"`
}

// AnthropicConfig holds Anthropic provider settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. Prefer env var ANTHROPIC_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the Anthropic model name.
	Model string `yaml:"model"`
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key. Prefer env var OPENAI_API_KEY.
	APIKey string `yaml:"api_key"`
	// Model is the OpenAI model name.
	Model string `yaml:"model"`
}

// OllamaConfig holds Ollama provider settings.
type OllamaConfig struct {
	// Host is the Ollama API endpoint.
	Host string `yaml:"host"`
	// Model is the Ollama model name.
	Model string `yaml:"model"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the embedding backend (ollama, openai).
	Provider string `yaml:"provider"`
	// Model is the embedding model name.
	Model string `yaml:"model"`
	// Dimensions overrides the embedding vector size.
	Dimensions int `yaml:"dimensions"`
	// APIKey is the embedding API key. Prefer env var EMBEDDING_API_KEY.
	APIKey string `yaml:"api_key"`
	// Endpoint is the embedding API endpoint.
	Endpoint string `yaml:"endpoint"`
}

// QdrantConfig holds Qdrant vector store settings.
type QdrantConfig struct {
	// Host is the Qdrant server hostname.
	Host string `yaml:"host"`
	// Port is the Qdrant gRPC port.
	Port int `yaml:"port"`
	// Collection is the Qdrant collection name.
	Collection string `yaml:"collection"`
	// APIKey is the Qdrant API key. Prefer env var QDRANT_API_KEY.
	APIKey string `yaml:"api_key"`
	// TLS enables TLS for the Qdrant connection.
	TLS bool `yaml:"tls"`
}

// RetrievalConfig holds retrieval stage settings.
type RetrievalConfig struct {
	// TopK is the number of nearest neighbors fetched per question.
	TopK int `yaml:"top_k"`
	// SimilarityThreshold is the minimum similarity for a source to count.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// IngestionConfig holds FAQ ingestion settings.
type IngestionConfig struct {
	// DataPath is the clinic FAQ JSON file path.
	DataPath string `yaml:"data_path"`
	// ChunkSize is the maximum characters per stored chunk.
	ChunkSize int `yaml:"chunk_size"`
	// ChunkOverlap is the overlap between consecutive chunk windows.
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// ClinicConfig holds the clinic identity.
type ClinicConfig struct {
	// Name is the clinic name used in the system message.
	Name string `yaml:"name"`
	// Phone is the contact number used in fallback messages.
	Phone string `yaml:"phone"`
	// Email is the clinic contact email.
	Email string `yaml:"email"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `yaml:"host"`
	// Port is the TCP port.
	Port int `yaml:"port"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
}

// HistoryConfig holds query log settings.
type HistoryConfig struct {
	// DBPath is the SQLite database path. Set to "disabled" to disable.
	DBPath string `yaml:"db_path"`
}

// envMapping maps YAML config fields to their corresponding env var names.
// Only non-empty YAML values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"LLM_PROVIDER", func(c *Config) string { return c.LLM.Provider }},
	{"LLM_MAX_TOKENS", func(c *Config) string { return intStr(c.LLM.MaxTokens) }},
	{"LLM_TEMPERATURE", func(c *Config) string { return float32Str(c.LLM.Temperature) }},
	{"ANTHROPIC_API_KEY", func(c *Config) string { return c.LLM.Anthropic.APIKey }},
	{"ANTHROPIC_MODEL", func(c *Config) string { return c.LLM.Anthropic.Model }},
	{"OPENAI_API_KEY", func(c *Config) string { return c.LLM.OpenAI.APIKey }},
	{"OPENAI_MODEL", func(c *Config) string { return c.LLM.OpenAI.Model }},
	{"OLLAMA_HOST", func(c *Config) string { return c.LLM.Ollama.Host }},
	{"OLLAMA_MODEL", func(c *Config) string { return c.LLM.Ollama.Model }},
	{"EMBEDDING_PROVIDER", func(c *Config) string { return c.Embedding.Provider }},
	{"EMBEDDING_MODEL", func(c *Config) string { return c.Embedding.Model }},
	{"EMBEDDING_DIMENSIONS", func(c *Config) string { return intStr(c.Embedding.Dimensions) }},
	{"EMBEDDING_API_KEY", func(c *Config) string { return c.Embedding.APIKey }},
	{"EMBEDDING_ENDPOINT", func(c *Config) string { return c.Embedding.Endpoint }},
	{"QDRANT_HOST", func(c *Config) string { return c.Qdrant.Host }},
	{"QDRANT_PORT", func(c *Config) string { return intStr(c.Qdrant.Port) }},
	{"QDRANT_COLLECTION", func(c *Config) string { return c.Qdrant.Collection }},
	{"QDRANT_API_KEY", func(c *Config) string { return c.Qdrant.APIKey }},
	{"QDRANT_TLS", func(c *Config) string { return boolStr(c.Qdrant.TLS) }},
	{"TOP_K_RESULTS", func(c *Config) string { return intStr(c.Retrieval.TopK) }},
	{"SIMILARITY_THRESHOLD", func(c *Config) string { return float64Str(c.Retrieval.SimilarityThreshold) }},
	{"FAQ_DATA_PATH", func(c *Config) string { return c.Ingestion.DataPath }},
	{"CHUNK_SIZE", func(c *Config) string { return intStr(c.Ingestion.ChunkSize) }},
	{"CHUNK_OVERLAP", func(c *Config) string { return intStr(c.Ingestion.ChunkOverlap) }},
	{"CLINIC_NAME", func(c *Config) string { return c.Clinic.Name }},
	{"CLINIC_PHONE", func(c *Config) string { return c.Clinic.Phone }},
	{"CLINIC_EMAIL", func(c *Config) string { return c.Clinic.Email }},
	{"SERVER_HOST", func(c *Config) string { return c.Server.Host }},
	{"SERVER_PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"FAQRAG_HISTORY_DB", func(c *Config) string { return c.History.DBPath }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten (env always wins).
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" || yamlVal == "0" || yamlVal == "false" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue // env var already set — do not override
		}
		os.Setenv(m.envKey, yamlVal)
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("FAQRAG_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".faqrag", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("faqrag.yaml"); err == nil {
		return "faqrag.yaml"
	}

	return ""
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// float32Str converts a float32 to string, returning "" for zero values.
func float32Str(v float32) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// float64Str converts a float64 to string, returning "" for zero values.
func float64Str(v float64) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// boolStr converts a bool to string, returning "" for false.
func boolStr(v bool) string {
	if !v {
		return ""
	}
	return "true"
}
