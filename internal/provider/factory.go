package provider

import (
	"fmt"
	"os"
	"strconv"
)

// Default models per backend. These mirror the models the clinic deployment
// was validated against; override via env or YAML config.
const (
	defaultAnthropicModel = "claude-3-5-sonnet-20241022"
	defaultOpenAIModel    = "gpt-3.5-turbo"
	defaultOllamaModel    = "llama3.2"

	// defaultMaxTokens bounds answer length across all backends. FAQ
	// answers are deliberately short (2-4 sentences).
	defaultMaxTokens = 500

	// defaultTemperature keeps answers conversational without drifting
	// from the supplied context.
	defaultTemperature = 0.7
)

// NewFromEnv constructs a Provider by reading configuration from
// environment variables. LLM_PROVIDER selects the backend; each backend
// uses its own native credential env vars.
//
//	LLM_PROVIDER = anthropic | openai | ollama (default: anthropic)
//
//	Anthropic: ANTHROPIC_API_KEY, ANTHROPIC_MODEL (default: claude-3-5-sonnet-20241022)
//	OpenAI:    OPENAI_API_KEY, OPENAI_MODEL (default: gpt-3.5-turbo)
//	Ollama:    OLLAMA_HOST (default: http://localhost:11434), OLLAMA_MODEL (default: llama3.2)
//
//	Shared:    LLM_MAX_TOKENS (default: 500), LLM_TEMPERATURE (default: 0.7)
func NewFromEnv() (Provider, error) {
	cfg := &Config{
		Backend: Backend(getEnvOrDefault("LLM_PROVIDER", string(BackendAnthropic))),
		Anthropic: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  getEnvOrDefault("ANTHROPIC_MODEL", defaultAnthropicModel),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getEnvOrDefault("OPENAI_MODEL", defaultOpenAIModel),
		},
		Ollama: OllamaConfig{
			Host:  getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434"),
			Model: getEnvOrDefault("OLLAMA_MODEL", defaultOllamaModel),
		},
		MaxTokens:   getEnvInt("LLM_MAX_TOKENS", defaultMaxTokens),
		Temperature: getEnvFloat32("LLM_TEMPERATURE", defaultTemperature),
	}

	return New(cfg)
}

// New constructs a Provider from an explicit Config. It validates the
// config first so an unknown backend or missing credential is a clear error
// at startup rather than on the first question.
func New(cfg *Config) (Provider, error) {
	switch cfg.Backend {
	case BackendAnthropic:
		if cfg.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("provider: anthropic requires ANTHROPIC_API_KEY")
		}
		return NewAnthropicProvider(&cfg.Anthropic, cfg.MaxTokens), nil
	case BackendOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("provider: openai requires OPENAI_API_KEY")
		}
		return NewOpenAIProvider(&cfg.OpenAI, cfg.MaxTokens, cfg.Temperature), nil
	case BackendOllama:
		if cfg.Ollama.Host == "" {
			return nil, fmt.Errorf("provider: ollama requires OLLAMA_HOST")
		}
		return NewOllamaProvider(&cfg.Ollama, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("provider: unknown backend %q — valid values: anthropic, openai, ollama", cfg.Backend)
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

// getEnvFloat32 returns the float32 value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
