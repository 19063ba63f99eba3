package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func Test_Metrics_EndpointReturns200(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAsker{result: okResult()}, &fakeCounter{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("want 200, got %d", rec.Code)
	}
	ct := rec.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("want text/plain content-type, got %q", ct)
	}
}

func Test_Metrics_AskCounterIncremented(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s := newTestServer(t, &fakeAsker{result: okResult()}, &fakeCounter{}, func(cfg *Config) {
		cfg.Registry = reg
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"What are your hours?"}`))
	s.httpServer.Handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := counterValue(t, reg, "faqrag_ask_requests_total", "outcome", outcomeOK); got != 1 {
		t.Errorf("faqrag_ask_requests_total{outcome=ok}: want 1, got %v", got)
	}
}

func Test_Metrics_NoContextOutcome(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	result := okResult()
	result.Sources = nil
	result.Confidence = 0
	s := newTestServer(t, &fakeAsker{result: result}, &fakeCounter{}, func(cfg *Config) {
		cfg.Registry = reg
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"off topic"}`))
	s.httpServer.Handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := counterValue(t, reg, "faqrag_ask_requests_total", "outcome", outcomeNoContext); got != 1 {
		t.Errorf("faqrag_ask_requests_total{outcome=no_context}: want 1, got %v", got)
	}
}

// counterValue gathers reg and returns the value of the named counter with
// the given label pair, or -1 when absent.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}
