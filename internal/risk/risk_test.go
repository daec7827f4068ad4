package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/aryan-2511/lexiclarus/internal/model"
)

// fakeProvider implements llm.Provider for testing
type fakeProvider struct {
	response string
	err      error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func hasFlag(flags []model.RiskFlag, want model.RiskFlag) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func TestHeuristicFlags(t *testing.T) {
	tests := []struct {
		name   string
		clause string
		want   []model.RiskFlag
	}{
		{"penalty", "A penalty of Rs 5000 applies.", []model.RiskFlag{model.RiskPenalty}},
		{"fine", "Any fine imposed shall be borne by the tenant.", []model.RiskFlag{model.RiskPenalty}},
		{"fee", "A processing fee is charged.", []model.RiskFlag{model.RiskFee}},
		{"charges", "Late charges apply after day five.", []model.RiskFlag{model.RiskFee}},
		{"auto-renew", "This lease shall auto-renew annually.", []model.RiskFlag{model.RiskAutoRenewal}},
		{"case insensitive", "A PENALTY applies.", []model.RiskFlag{model.RiskPenalty}},
		{"clean clause", "The premises shall be used for residential purposes.", []model.RiskFlag{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeuristicFlags(tt.clause)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for _, f := range tt.want {
				if !hasFlag(got, f) {
					t.Errorf("missing flag %s in %v", f, got)
				}
			}
		})
	}
}

func TestFlags_ProviderResponse(t *testing.T) {
	agent := NewAgent(&fakeProvider{response: `["arbitration", "liability"]`}, nil)

	flags := agent.Flags(context.Background(), "Disputes go to binding arbitration.")
	if len(flags) != 2 || !hasFlag(flags, model.RiskArbitration) || !hasFlag(flags, model.RiskLiability) {
		t.Errorf("unexpected flags %v", flags)
	}
}

func TestFlags_OutOfVocabularyDiscarded(t *testing.T) {
	agent := NewAgent(&fakeProvider{response: `["penalty", "sabotage"]`}, nil)

	flags := agent.Flags(context.Background(), "clause")
	for _, f := range flags {
		if !model.IsValidRiskFlag(string(f)) {
			t.Errorf("out-of-vocabulary flag %q stored", f)
		}
	}
	if hasFlag(flags, model.RiskFlag("sabotage")) {
		t.Error("sabotage must never appear in output")
	}
	if !hasFlag(flags, model.RiskPenalty) {
		t.Errorf("valid flag dropped: %v", flags)
	}
}

func TestFlags_PythonStyleList(t *testing.T) {
	agent := NewAgent(&fakeProvider{response: `['penalty', 'fee']`}, nil)

	flags := agent.Flags(context.Background(), "clause")
	if !hasFlag(flags, model.RiskPenalty) || !hasFlag(flags, model.RiskFee) {
		t.Errorf("expected single-quoted list parsed, got %v", flags)
	}
}

func TestFlags_ProviderErrorFallsBack(t *testing.T) {
	agent := NewAgent(&fakeProvider{err: errors.New("quota exceeded")}, nil)

	flags := agent.Flags(context.Background(), "A penalty applies.")
	if !hasFlag(flags, model.RiskPenalty) {
		t.Errorf("expected heuristic fallback, got %v", flags)
	}
}

func TestFlags_UnparseableFallsBack(t *testing.T) {
	agent := NewAgent(&fakeProvider{response: "no structured output here"}, nil)

	flags := agent.Flags(context.Background(), "A fine applies.")
	if !hasFlag(flags, model.RiskPenalty) {
		t.Errorf("expected heuristic fallback, got %v", flags)
	}
}

func TestFlags_EmptyArray(t *testing.T) {
	agent := NewAgent(&fakeProvider{response: `[]`}, nil)

	flags := agent.Flags(context.Background(), "A penalty applies.")
	if len(flags) != 0 {
		t.Errorf("model said no risks, expected empty, got %v", flags)
	}
}
