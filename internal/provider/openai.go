package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
// The system message and the composed prompt travel as separate system- and
// user-role messages; the answer is the first choice's message content.
// It is safe for concurrent use.
type OpenAIProvider struct {
	// baseURL is the API base (default: "https://api.openai.com/v1").
	baseURL string
	// apiKey is the Bearer token.
	apiKey string
	// model is the model name to generate with.
	model string
	// maxTokens caps the generated answer length.
	maxTokens int
	// temperature controls response randomness.
	temperature float32
	// client is the shared HTTP client with an explicit timeout.
	client *http.Client
}

// NewOpenAIProvider constructs an OpenAIProvider from the given config.
func NewOpenAIProvider(cfg *OpenAIConfig, maxTokens int, temperature float32) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

// Name returns the backend label.
func (p *OpenAIProvider) Name() string { return string(BackendOpenAI) }

// openaiChatMessage is a single chat message in the Chat Completions request.
type openaiChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openaiChatRequest is the JSON body sent to /chat/completions.
type openaiChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openaiChatMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float32             `json:"temperature"`
}

// openaiChatResponse is the JSON body returned from /chat/completions.
type openaiChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends system and user messages and returns the first choice's
// message content.
func (p *OpenAIProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	payload, err := json.Marshal(openaiChatRequest{
		Model: p.model,
		Messages: []openaiChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	var result openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("openai: %s", msg)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: response contained no choices")
	}

	return result.Choices[0].Message.Content, nil
}
