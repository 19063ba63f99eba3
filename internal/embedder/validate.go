package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// knownChatModelFragments contains name fragments that identify
// chat/completion models which are NOT suitable for embedding. If
// EMBEDDING_MODEL matches any of these, a warning is emitted so the operator
// knows they may have misconfigured the pipeline.
var knownChatModelFragments = []string{
	"gpt-4",
	"gpt-3.5",
	"o1",
	"o3",
	"llama3",
	"llama-3",
	"mistral",
	"mixtral",
	"gemma",
	"phi-",
	"claude",
	"deepseek",
	"qwen",
}

// looksLikeChatModel returns true when the model name resembles a known
// chat/completion model rather than a dedicated embedding model.
func looksLikeChatModel(model string) bool {
	lower := strings.ToLower(model)
	for _, fragment := range knownChatModelFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Validate is a pre-flight check of the embedding configuration. It returns
// an error when the configuration is clearly broken (openai backend with no
// API key), and logs a warning when EMBEDDING_MODEL looks like a chat model.
// Call it before constructing the embedder or the vector store so operators
// get a clear error at startup rather than a cryptic failure on the first
// embed call.
func Validate(log *slog.Logger) error {
	backend := Backend()

	switch backend {
	case "ollama":
		// Local backend, no credentials required.
	case "openai":
		if os.Getenv("EMBEDDING_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("embedder: EMBEDDING_PROVIDER=openai but no API key found — set OPENAI_API_KEY or EMBEDDING_API_KEY")
		}
	default:
		return fmt.Errorf("embedder: unknown backend %q — valid values: ollama, openai", backend)
	}

	if model := os.Getenv("EMBEDDING_MODEL"); model != "" && looksLikeChatModel(model) {
		log.Warn("embedder: EMBEDDING_MODEL looks like a chat model, not an embedding model — "+
			"this will likely produce poor or broken embeddings",
			slog.String("model", model),
			slog.String("hint", "use a dedicated embedding model e.g. nomic-embed-text, text-embedding-3-small"),
		)
	}

	return nil
}
