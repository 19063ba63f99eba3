package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// anthropicAPIVersion is the Messages API version header required on every
// request.
const anthropicAPIVersion = "2023-06-01"

// AnthropicProvider implements Provider using the Anthropic Messages API.
// The system message travels in the top-level system field and the composed
// prompt as a single user-role message; the answer is the first text content
// block of the reply. It is safe for concurrent use.
type AnthropicProvider struct {
	// baseURL is the API base (default: "https://api.anthropic.com").
	baseURL string
	// apiKey is the x-api-key header value.
	apiKey string
	// model is the model name to generate with.
	model string
	// maxTokens caps the generated answer length.
	maxTokens int
	// client is the shared HTTP client with an explicit timeout.
	client *http.Client
}

// NewAnthropicProvider constructs an AnthropicProvider from the given config.
func NewAnthropicProvider(cfg *AnthropicConfig, maxTokens int) *AnthropicProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &AnthropicProvider{
		baseURL:   baseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Name returns the backend label.
func (p *AnthropicProvider) Name() string { return string(BackendAnthropic) }

// anthropicMessage is a single chat message in the Messages API request.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicRequest is the JSON body sent to /v1/messages.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicResponse is the JSON body returned from /v1/messages.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends the prompt as a single user message and returns the first
// text content block of the reply.
func (p *AnthropicProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	payload, err := json.Marshal(anthropicRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("anthropic: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("anthropic: %s", msg)
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("anthropic: response contained no text block")
}
