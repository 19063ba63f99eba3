package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/healthcareplus/faqrag-go/internal/rag"
)

// systemMessage frames every generation request with the clinic identity.
func (e *Engine) systemMessage() string {
	return fmt.Sprintf("You are a helpful medical clinic assistant for %s.", e.cfg.ClinicName)
}

// buildPrompt composes the grounded generation prompt: one numbered block
// per retrieved document with its similarity score, the user's question,
// and the answering instructions. Documents keep retrieval order, so block
// numbers rank by relevance.
func buildPrompt(question string, docs []rag.Document) string {
	var b strings.Builder

	b.WriteString("Context from our knowledge base:\n\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "Document %d (Relevance: %s):\n%s\n\n",
			i+1, formatScore(d.Similarity), d.Content)
	}

	fmt.Fprintf(&b, "User question: %s\n\n", question)

	b.WriteString("Instructions:\n")
	b.WriteString("- Answer using ONLY the context provided above\n")
	b.WriteString("- Be friendly, professional, and empathetic\n")
	b.WriteString("- If the context does not contain the answer, politely say you don't know and suggest contacting the clinic\n")
	b.WriteString("- Keep the response concise (2-4 sentences) and conversational\n\n")
	b.WriteString("Answer:")

	return b.String()
}

// formatScore renders a similarity score without trailing zeros, so 0.900
// prints as "0.9" and 0.877 as "0.877".
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
