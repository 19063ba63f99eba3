package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	path, err := Load("/nonexistent/path/config.yaml", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
llm:
  provider: anthropic
  max_tokens: 500
  temperature: 0.7
  anthropic:
    model: claude-3-5-sonnet-20241022
embedding:
  provider: ollama
  model: nomic-embed-text
qdrant:
  host: qdrant.internal
  port: 6334
  collection: clinic-faq
retrieval:
  top_k: 3
  similarity_threshold: 0.6
clinic:
  name: HealthCare Plus
  phone: "(555) 123-4567"
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"LLM_PROVIDER", "LLM_MAX_TOKENS", "LLM_TEMPERATURE",
		"ANTHROPIC_MODEL",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL",
		"QDRANT_HOST", "QDRANT_PORT", "QDRANT_COLLECTION",
		"TOP_K_RESULTS", "SIMILARITY_THRESHOLD",
		"CLINIC_NAME", "CLINIC_PHONE",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"LLM_PROVIDER":         "anthropic",
		"LLM_MAX_TOKENS":       "500",
		"LLM_TEMPERATURE":      "0.7",
		"ANTHROPIC_MODEL":      "claude-3-5-sonnet-20241022",
		"EMBEDDING_PROVIDER":   "ollama",
		"EMBEDDING_MODEL":      "nomic-embed-text",
		"QDRANT_HOST":          "qdrant.internal",
		"QDRANT_PORT":          "6334",
		"QDRANT_COLLECTION":    "clinic-faq",
		"TOP_K_RESULTS":        "3",
		"SIMILARITY_THRESHOLD": "0.6",
		"CLINIC_NAME":          "HealthCare Plus",
		"CLINIC_PHONE":         "(555) 123-4567",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "text",
	}
	for k, want := range checks {
		got := os.Getenv(k)
		if got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
llm:
  provider: ollama
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Set env var BEFORE loading — it should NOT be overwritten.
	t.Setenv("LLM_PROVIDER", "anthropic")

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("LLM_PROVIDER"); got != "anthropic" {
		t.Errorf("LLM_PROVIDER: expected env override %q, got %q", "anthropic", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.Default()
	_, err := Load(cfgPath, log)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestFloat64Str(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want string
	}{
		{0.0, ""},
		{0.6, "0.6"},
		{0.75, "0.75"},
		{1.0, "1"},
	}
	for _, tt := range tests {
		if got := float64Str(tt.in); got != tt.want {
			t.Errorf("float64Str(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
