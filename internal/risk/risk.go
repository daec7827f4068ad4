// Package risk tags clauses with flags from a closed vocabulary, via the
// generative model when one is configured and a keyword heuristic
// otherwise. Tags outside the vocabulary are discarded, never stored.
package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/aryan-2511/lexiclarus/internal/clause"
	"github.com/aryan-2511/lexiclarus/internal/llm"
	"github.com/aryan-2511/lexiclarus/internal/model"
	"github.com/aryan-2511/lexiclarus/pkg/logger"
)

const riskPromptFmt = `Identify contractual risks in the clause below.
Return a JSON array containing only tags from this list, or an empty array:
%s

Clause:
%s`

// Agent detects risk flags in clause text.
type Agent struct {
	provider llm.Provider // nil = heuristic only
	log      logger.Logger
}

// NewAgent creates a risk agent. provider may be nil.
func NewAgent(provider llm.Provider, log logger.Logger) *Agent {
	if log == nil {
		log = logger.Default()
	}
	return &Agent{provider: provider, log: log}
}

// Flags returns the subset of the vocabulary matched for the clause.
// Every failure degrades to the keyword heuristic; this never errors.
func (a *Agent) Flags(ctx context.Context, clauseText string) []model.RiskFlag {
	if a.provider == nil {
		return HeuristicFlags(clauseText)
	}

	vocab := make([]string, 0, len(model.ValidRiskFlags()))
	for _, f := range model.ValidRiskFlags() {
		vocab = append(vocab, string(f))
	}

	raw, err := a.provider.Generate(ctx, fmt.Sprintf(riskPromptFmt, strings.Join(vocab, ", "), clauseText))
	if err != nil {
		a.log.Warn("risk analysis call failed, using heuristic", "error", err)
		return HeuristicFlags(clauseText)
	}

	tags, err := parseTagList(raw)
	if err != nil {
		a.log.Warn("unparseable risk response, using heuristic", "error", err)
		return HeuristicFlags(clauseText)
	}

	return model.FilterRiskFlags(tags)
}

var quotedTag = regexp.MustCompile(`['"]([a-z][a-z-]*)['"]`)

// parseTagList decodes a model response expected to be a list of tags.
// JSON is tried first; failing that, quoted tokens are scraped out, which
// tolerates Python-style single-quoted lists.
func parseTagList(raw string) ([]string, error) {
	raw = clause.StripCodeFences(raw)

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		return tags, nil
	}

	matches := quotedTag.FindAllStringSubmatch(raw, -1)
	if matches == nil {
		return nil, fmt.Errorf("no tag list in response")
	}

	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags, nil
}

// keywordRules maps case-insensitive substrings to vocabulary flags.
var keywordRules = []struct {
	substrings []string
	flag       model.RiskFlag
}{
	{[]string{"penalty", "fine"}, model.RiskPenalty},
	{[]string{"fee", "charges"}, model.RiskFee},
	{[]string{"auto-renew"}, model.RiskAutoRenewal},
}

// HeuristicFlags scans clause text for fixed substrings. It is the only
// risk path when no generative model is configured.
func HeuristicFlags(clauseText string) []model.RiskFlag {
	low := strings.ToLower(clauseText)

	flags := []model.RiskFlag{}
	for _, rule := range keywordRules {
		for _, sub := range rule.substrings {
			if strings.Contains(low, sub) {
				flags = append(flags, rule.flag)
				break
			}
		}
	}
	return flags
}
