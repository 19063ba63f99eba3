package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/healthcareplus/faqrag-go/internal/engine"
	"github.com/healthcareplus/faqrag-go/internal/rag"
)

// fakeAsker returns a canned engine result or error.
type fakeAsker struct {
	result *engine.Result
	err    error

	calls        int
	lastQuestion string
}

func (f *fakeAsker) Query(_ context.Context, question string) (*engine.Result, error) {
	f.calls++
	f.lastQuestion = question
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeCounter reports a canned document count or error.
type fakeCounter struct {
	count uint64
	err   error
}

func (f *fakeCounter) Count(_ context.Context) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

// fakeRecorder captures query log writes.
type fakeRecorder struct {
	err     error
	entries []string
}

func (f *fakeRecorder) Record(_ context.Context, conversationID, question, _ string, _ float64) error {
	f.entries = append(f.entries, conversationID+"/"+question)
	return f.err
}

// newTestServer builds a Server with a hermetic registry and no pingers.
func newTestServer(t *testing.T, eng asker, index counter, mutate func(*Config)) *Server {
	t.Helper()

	cfg := &Config{Registry: prometheus.NewRegistry()}
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(eng, index, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.stopRL)
	return s
}

func okResult() *engine.Result {
	return &engine.Result{
		Answer: "We are open 9am-5pm.",
		Sources: []rag.Document{
			{Content: "Office Hours: 9am-5pm", Similarity: 0.9},
		},
		Confidence: 0.9,
		Question:   "What are your hours?",
	}
}

func TestNew_NilDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, &fakeCounter{}, nil); err == nil {
		t.Error("nil engine must fail")
	}
	if _, err := New(&fakeAsker{}, nil, nil); err == nil {
		t.Error("nil index must fail")
	}
}

func TestHandleAsk_OK(t *testing.T) {
	t.Parallel()

	eng := &fakeAsker{result: okResult()}
	s := newTestServer(t, eng, &fakeCounter{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"What are your hours?"}`))
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	var resp engine.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "We are open 9am-5pm." {
		t.Errorf("answer: got %q", resp.Answer)
	}
	if resp.Confidence != 0.9 {
		t.Errorf("confidence: got %v", resp.Confidence)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Similarity != 0.9 {
		t.Errorf("sources: got %+v", resp.Sources)
	}
	if eng.lastQuestion != "What are your hours?" {
		t.Errorf("question passed to engine: got %q", eng.lastQuestion)
	}
}

func TestHandleAsk_EmptyQuestion(t *testing.T) {
	t.Parallel()

	eng := &fakeAsker{result: okResult()}
	s := newTestServer(t, eng, &fakeCounter{}, nil)

	for _, body := range []string{`{"question":""}`, `{"question":"   "}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(body))
		rec := httptest.NewRecorder()
		s.httpServer.Handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: want 400, got %d", body, rec.Code)
		}
	}
	if eng.calls != 0 {
		t.Errorf("engine must not run for empty questions, got %d calls", eng.calls)
	}
}

func TestHandleAsk_InvalidBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAsker{result: okResult()}, &fakeCounter{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("want 400, got %d", rec.Code)
	}
}

func TestHandleAsk_EngineErrorIsOpaque(t *testing.T) {
	t.Parallel()

	eng := &fakeAsker{err: errors.New("embedding backend at 10.0.0.5:11434 refused connection")}
	s := newTestServer(t, eng, &fakeCounter{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"hi"}`))
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("response must not leak backend detail: %s", rec.Body.String())
	}
}

func TestHandleAsk_RecordsHistory(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	s := newTestServer(t, &fakeAsker{result: okResult()}, &fakeCounter{}, func(cfg *Config) {
		cfg.History = recorder
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"What are your hours?","conversation_id":"conv-1"}`))
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if len(recorder.entries) != 1 || recorder.entries[0] != "conv-1/What are your hours?" {
		t.Errorf("history entries: got %v", recorder.entries)
	}
}

func TestHandleAsk_HistoryFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{err: errors.New("disk full")}
	s := newTestServer(t, &fakeAsker{result: okResult()}, &fakeCounter{}, func(cfg *Config) {
		cfg.History = recorder
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"hi"}`))
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("history failure must not fail the request, got %d", rec.Code)
	}
}

func TestHandleAsk_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAsker{result: okResult()}, &fakeCounter{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ask", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("want 405, got %d", rec.Code)
	}
}
