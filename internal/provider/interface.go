// Package provider defines the Provider capability and factory for
// selecting and constructing the answer-generation backend at startup.
// Supported backends: Anthropic, OpenAI, Ollama. The backend choice is made
// once at process startup and is immutable for the process lifetime.
package provider

import (
	"context"
)

// Backend enumerates the supported answer-generation providers.
type Backend string

const (
	// BackendAnthropic selects the Anthropic Messages API.
	BackendAnthropic Backend = "anthropic"
	// BackendOpenAI selects the OpenAI Chat Completions API.
	BackendOpenAI Backend = "openai"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
)

// Provider is the capability shared by all generation backends: turn a
// system message and a composed user prompt into answer text. It is called
// only when at least one document was retrieved — the engine short-circuits
// empty-context questions before reaching the provider.
// Implementations must be safe to call from multiple goroutines.
type Provider interface {
	// Generate returns the model's answer text for the given system message
	// and user prompt. Any error is reported to the caller; providers never
	// retry internally.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// Name returns the backend label used in logs (e.g. "anthropic").
	Name() string
}

// Config holds all provider-level configuration resolved from environment
// variables or explicit caller-supplied values.
type Config struct {
	// Backend identifies which generation provider to use.
	Backend Backend

	// Anthropic holds Anthropic-specific settings.
	Anthropic AnthropicConfig

	// OpenAI holds OpenAI-specific settings.
	OpenAI OpenAIConfig

	// Ollama holds Ollama-specific settings.
	Ollama OllamaConfig

	// MaxTokens caps the number of tokens the model may generate per answer.
	MaxTokens int

	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// AnthropicConfig holds Anthropic Messages API settings.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key.
	APIKey string
	// Model is the model name (e.g. "claude-3-5-sonnet-20241022").
	Model string
	// BaseURL overrides the default API endpoint (tests only).
	BaseURL string
}

// OpenAIConfig holds OpenAI Chat Completions settings.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key.
	APIKey string
	// Model is the model name (e.g. "gpt-3.5-turbo").
	Model string
	// BaseURL overrides the default API endpoint (tests only).
	BaseURL string
}

// OllamaConfig holds local Ollama settings.
type OllamaConfig struct {
	// Host is the Ollama server base URL (e.g. "http://localhost:11434").
	Host string
	// Model is the Ollama model name (e.g. "llama3.2").
	Model string
}
