package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ollamaTimeout is the fixed upper bound on a local generation call. Local
// models can be slow on first load; anything beyond this is treated as a
// failure and degraded by the engine.
const ollamaTimeout = 60 * time.Second

// OllamaProvider implements Provider using the Ollama /api/generate
// endpoint. The system message and composed prompt are combined into a
// single prompt; generation length is bounded via num_predict. It is safe
// for concurrent use. No API key is required — Ollama runs locally.
type OllamaProvider struct {
	// host is the Ollama server base URL (e.g. "http://localhost:11434").
	host string
	// model is the Ollama model name (e.g. "llama3.2").
	model string
	// maxTokens bounds generation via the num_predict option.
	maxTokens int
	// client is the shared HTTP client with the fixed local timeout.
	client *http.Client
}

// NewOllamaProvider constructs an OllamaProvider from the given config.
func NewOllamaProvider(cfg *OllamaConfig, maxTokens int) *OllamaProvider {
	return &OllamaProvider{
		host:      cfg.Host,
		model:     cfg.Model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: ollamaTimeout},
	}
}

// Name returns the backend label.
func (p *OllamaProvider) Name() string { return string(BackendOllama) }

// ollamaGenerateRequest is the JSON body sent to /api/generate.
type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

// ollamaOptions carries the bounded generation-length option.
type ollamaOptions struct {
	NumPredict int `json:"num_predict"`
}

// ollamaGenerateResponse is the JSON body returned from /api/generate.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends a single combined system+user prompt and returns the
// plain-text response field.
func (p *OllamaProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	combined := prompt
	if system != "" {
		combined = system + "\n\n" + prompt
	}

	payload, err := json.Marshal(ollamaGenerateRequest{
		Model:   p.model,
		Prompt:  combined,
		Stream:  false,
		Options: ollamaOptions{NumPredict: p.maxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != "" {
			msg = result.Error
		}
		return "", fmt.Errorf("ollama: %s", msg)
	}

	return strings.TrimSpace(result.Response), nil
}
