// Package engine implements the query pipeline: embed the question,
// retrieve and threshold-filter similar FAQ chunks, score answer
// confidence, and generate a grounded answer through the configured
// provider. All collaborators are long-lived, concurrency-safe handles
// injected at construction; the engine itself holds no per-request state.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/healthcareplus/faqrag-go/internal/logging"
	"github.com/healthcareplus/faqrag-go/internal/provider"
	"github.com/healthcareplus/faqrag-go/internal/rag"
)

// Result is the assembled answer for one question.
type Result struct {
	// Answer is the generated (or fallback) answer text.
	Answer string `json:"answer"`

	// Sources are the retrieved documents in descending-similarity order.
	// Callers may rely on Sources[0] being the best match.
	Sources []rag.Document `json:"sources"`

	// Confidence is the mean of the source similarity scores, rounded to 3
	// decimals; 0.0 when Sources is empty. It reflects retrieval quality
	// only — it is unchanged by generation failures.
	Confidence float64 `json:"confidence"`

	// Question echoes the input question.
	Question string `json:"question"`
}

// Config holds the engine's clinic identity, interpolated into prompts and
// fallback text.
type Config struct {
	// ClinicName is the organization name stated in the system message.
	ClinicName string

	// ClinicPhone is the contact number included in fallback and apology
	// messages.
	ClinicPhone string
}

// Engine sequences retrieval, confidence scoring, and answer generation for
// each incoming question.
type Engine struct {
	// retriever fetches threshold-filtered context documents.
	retriever rag.Retriever

	// llm generates the answer text from the composed prompt.
	llm provider.Provider

	// cfg holds the clinic identity.
	cfg Config
}

// New constructs an Engine from its collaborators.
func New(retriever rag.Retriever, llm provider.Provider, cfg Config) (*Engine, error) {
	if retriever == nil {
		return nil, fmt.Errorf("engine: retriever must not be nil")
	}
	if llm == nil {
		return nil, fmt.Errorf("engine: provider must not be nil")
	}
	if cfg.ClinicName == "" {
		cfg.ClinicName = "our clinic"
	}
	return &Engine{retriever: retriever, llm: llm, cfg: cfg}, nil
}

// Query answers a single question.
//
// Index failures have already been degraded to zero documents by the
// retriever; with zero documents the provider is never invoked and the
// fixed insufficient-information message is returned. A generation failure
// is logged and replaced by the apology message. The only error Query
// returns is an embedding failure (wrapping [rag.ErrEmbedding]) — without a
// query vector there is nothing sensible to answer.
func (e *Engine) Query(ctx context.Context, question string) (*Result, error) {
	log := logging.FromContext(ctx)

	docs, err := e.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	confidence := Confidence(docs)

	if len(docs) == 0 {
		log.Info("engine: no documents above threshold",
			slog.String("question", question),
		)
		return &Result{
			Answer:     e.noContextMessage(),
			Sources:    []rag.Document{},
			Confidence: confidence,
			Question:   question,
		}, nil
	}

	answer, genErr := e.llm.Generate(ctx, e.systemMessage(), buildPrompt(question, docs))
	if genErr != nil {
		// Generation failures never fail the request: confidence was
		// computed from retrieval and still stands.
		log.Error("engine: answer generation failed",
			slog.String("provider", e.llm.Name()),
			slog.Any("error", genErr),
		)
		answer = e.apologyMessage()
	}

	log.Info("engine: question answered",
		slog.Int("sources", len(docs)),
		slog.Float64("confidence", confidence),
		slog.Bool("degraded", genErr != nil),
	)

	return &Result{
		Answer:     answer,
		Sources:    docs,
		Confidence: confidence,
		Question:   question,
	}, nil
}

// noContextMessage is returned when retrieval found nothing relevant.
func (e *Engine) noContextMessage() string {
	return "I don't have enough information to answer that question. " +
		"Please contact our clinic directly for assistance."
}

// apologyMessage is returned when the provider failed; it carries the
// configured contact number so the caller still has a path forward.
func (e *Engine) apologyMessage() string {
	if e.cfg.ClinicPhone == "" {
		return "I apologize, but I'm having trouble generating a response right now. " +
			"Please contact our clinic directly for assistance."
	}
	return fmt.Sprintf("I apologize, but I'm having trouble generating a response right now. "+
		"Please call us at %s for assistance.", e.cfg.ClinicPhone)
}
