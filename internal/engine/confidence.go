package engine

import "github.com/healthcareplus/faqrag-go/internal/rag"

// Confidence scores retrieval quality as the arithmetic mean of the
// documents' similarity scores, rounded to 3 decimals. An empty slice
// scores 0.0. Because each similarity lies in [0,1], so does the result.
//
// The score depends on retrieval alone: generation failures, and the
// content of the generated answer, never move it.
func Confidence(docs []rag.Document) float64 {
	if len(docs) == 0 {
		return 0.0
	}
	var sum float64
	for _, d := range docs {
		sum += d.Similarity
	}
	return rag.Round3(sum / float64(len(docs)))
}
