package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ---------------------------------------------------------------------------
// Factory validation
// ---------------------------------------------------------------------------

func TestNew_UnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := New(&Config{Backend: "gemini"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Parallel()

	if _, err := New(&Config{Backend: BackendAnthropic}); err == nil {
		t.Error("anthropic without API key must fail at construction")
	}
	if _, err := New(&Config{Backend: BackendOpenAI}); err == nil {
		t.Error("openai without API key must fail at construction")
	}
}

func TestNew_OllamaNeedsNoCredentials(t *testing.T) {
	t.Parallel()

	p, err := New(&Config{
		Backend: BackendOllama,
		Ollama:  OllamaConfig{Host: "http://localhost:11434", Model: "llama3.2"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Name: want ollama, got %q", p.Name())
	}
}

// ---------------------------------------------------------------------------
// AnthropicProvider against a fake HTTP server
// ---------------------------------------------------------------------------

func TestAnthropicProvider_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("x-api-key: got %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicAPIVersion {
			t.Errorf("anthropic-version: got %q", got)
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System == "" {
			t.Error("system field must carry the system message")
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("want exactly one user message, got %+v", req.Messages)
		}

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"We are open 9am-5pm."}]}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(&AnthropicConfig{
		APIKey:  "sk-ant-test",
		Model:   "claude-3-5-sonnet-20241022",
		BaseURL: srv.URL,
	}, 500)

	answer, err := p.Generate(context.Background(), "You are a clinic assistant.", "What are your office hours?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "We are open 9am-5pm." {
		t.Errorf("answer: got %q", answer)
	}
}

func TestAnthropicProvider_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(&AnthropicConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, 500)

	if _, err := p.Generate(context.Background(), "s", "p"); err == nil {
		t.Fatal("expected error for HTTP 429")
	}
}

func TestAnthropicProvider_NoTextBlock(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(&AnthropicConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, 500)

	if _, err := p.Generate(context.Background(), "s", "p"); err == nil {
		t.Fatal("expected error for empty content")
	}
}

// ---------------------------------------------------------------------------
// OpenAIProvider against a fake HTTP server
// ---------------------------------------------------------------------------

func TestOpenAIProvider_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization: got %q", got)
		}

		var req openaiChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("want system+user messages, got %+v", req.Messages)
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Yes, we accept Blue Cross."}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(&OpenAIConfig{
		APIKey:  "sk-test",
		Model:   "gpt-3.5-turbo",
		BaseURL: srv.URL,
	}, 500, 0.7)

	answer, err := p.Generate(context.Background(), "You are a clinic assistant.", "Do you accept Blue Cross?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "Yes, we accept Blue Cross." {
		t.Errorf("answer: got %q", answer)
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(&OpenAIConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, 500, 0.7)

	if _, err := p.Generate(context.Background(), "s", "p"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

// ---------------------------------------------------------------------------
// OllamaProvider against a fake HTTP server
// ---------------------------------------------------------------------------

func TestOllamaProvider_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream must be false")
		}
		if req.Options.NumPredict != 500 {
			t.Errorf("num_predict: want 500, got %d", req.Options.NumPredict)
		}
		// The system message is folded into the single prompt.
		if req.Prompt == "" || req.Prompt[:7] != "You are" {
			t.Errorf("prompt must start with the system message, got %q", req.Prompt)
		}

		_, _ = w.Write([]byte(`{"response":"Parking is free behind the building.\n"}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(&OllamaConfig{Host: srv.URL, Model: "llama3.2"}, 500)

	answer, err := p.Generate(context.Background(), "You are a clinic assistant.", "Where can I park?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "Parking is free behind the building." {
		t.Errorf("answer: got %q", answer)
	}
}

func TestOllamaProvider_ErrorField(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama3.2' not found"}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(&OllamaConfig{Host: srv.URL, Model: "llama3.2"}, 500)

	if _, err := p.Generate(context.Background(), "s", "p"); err == nil {
		t.Fatal("expected error for missing model")
	}
}
