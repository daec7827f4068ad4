package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aryan-2511/lexiclarus/internal/clause"
	"github.com/aryan-2511/lexiclarus/internal/model"
)

// newTestAnalyzer points the simplifier at a stub endpoint. No generative
// provider is configured, so segmentation and risk use their fallbacks.
func newTestAnalyzer(t *testing.T, handler http.HandlerFunc) *Analyzer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := model.DefaultConfig()
	cfg.Simplifier.BaseURL = srv.URL
	cfg.Simplifier.MaxAttempts = 1
	cfg.Simplifier.InitialBackoff = time.Millisecond
	cfg.Simplifier.CacheTTL = 0
	return NewAnalyzer(cfg, nil)
}

func echoSimplifier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data []json.RawMessage `json:"data"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	var batch []string
	_ = json.Unmarshal(req.Data[0], &batch)
	out := make([]string, len(batch))
	for i, c := range batch {
		out[i] = "simplified: " + c
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{out}})
}

func TestAnalyzeDocument_EndToEnd(t *testing.T) {
	a := newTestAnalyzer(t, echoSimplifier)

	text := "A penalty of Rs 5000 applies for late payment.\n\nThe agreement is for a period of 12 months."
	results, err := a.AnalyzeDocument(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 clause results, got %d", len(results))
	}
	for i, res := range results {
		if res.ClauseNumber != i+1 {
			t.Errorf("result %d: expected clause number %d, got %d", i, i+1, res.ClauseNumber)
		}
		if res.RiskFlags == nil {
			t.Errorf("result %d: risk flags must never be nil", i)
		}
	}

	if results[0].SimplifiedText != "simplified: "+results[0].OriginalClause {
		t.Errorf("unexpected simplified text %q", results[0].SimplifiedText)
	}
	if len(results[0].RiskFlags) == 0 || results[0].RiskFlags[0] != model.RiskPenalty {
		t.Errorf("expected penalty flag on first clause, got %v", results[0].RiskFlags)
	}
}

func TestAnalyzeDocument_SimplifierDownDegrades(t *testing.T) {
	a := newTestAnalyzer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	text := "First clause.\n\nSecond clause."
	results, err := a.AnalyzeDocument(context.Background(), text)
	if err != nil {
		t.Fatalf("degraded analysis must not error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, res := range results {
		if res.SimplifiedText != res.OriginalClause {
			t.Errorf("result %d: expected identity fallback, got %q", i, res.SimplifiedText)
		}
	}
}

func TestAnalyzeDocument_NoClauses(t *testing.T) {
	a := newTestAnalyzer(t, echoSimplifier)

	_, err := a.AnalyzeDocument(context.Background(), "   ")
	if !errors.Is(err, clause.ErrNoClauses) {
		t.Errorf("expected ErrNoClauses, got %v", err)
	}
}

func TestAnswer_HeuristicPath(t *testing.T) {
	a := newTestAnalyzer(t, echoSimplifier)

	answer := a.Answer(context.Background(), "What is the duration?", "a period of 12 months")
	if !strings.Contains(answer, "12 months") {
		t.Errorf("expected answer to contain %q, got %q", "12 months", answer)
	}
}
