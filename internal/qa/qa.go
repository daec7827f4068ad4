// Package qa answers free-text questions against document text, via the
// generative model when configured and duration/date regex heuristics
// otherwise.
package qa

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aryan-2511/lexiclarus/internal/llm"
	"github.com/aryan-2511/lexiclarus/pkg/logger"
)

// NotFoundAnswer is the sentinel returned when no heuristic matches.
const NotFoundAnswer = "The answer to this question is not found in the document."

const answerPromptFmt = `Answer the question based ONLY on the following text:

%s

Q: %s

A:`

// Agent answers questions against a document context.
type Agent struct {
	provider llm.Provider // nil = heuristic only
	log      logger.Logger
}

// NewAgent creates a Q&A agent. provider may be nil.
func NewAgent(provider llm.Provider, log logger.Logger) *Agent {
	if log == nil {
		log = logger.Default()
	}
	return &Agent{provider: provider, log: log}
}

// Answer responds to the question. A provider failure degrades to the
// heuristic; this never errors.
func (a *Agent) Answer(ctx context.Context, question, docContext string) string {
	if a.provider != nil {
		answer, err := a.provider.Generate(ctx, fmt.Sprintf(answerPromptFmt, docContext, question))
		if err == nil && strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer)
		}
		if err != nil {
			a.log.Warn("Q&A call failed, using heuristic", "error", err)
		}
	}

	return HeuristicAnswer(question, docContext)
}

var (
	periodPattern    = regexp.MustCompile(`(?i)period\s+of\s+(\d{1,3})\s*(months?|years?)`)
	dateRangePattern = regexp.MustCompile(`(?i)from\s+(.*?)\s+(?:to|until)\s+(.*?)(?:\.|,|$)`)
)

// FindPeriod extracts a "period of N months/years" phrase.
func FindPeriod(docContext string) (string, bool) {
	m := periodPattern.FindStringSubmatch(docContext)
	if m == nil {
		return "", false
	}
	return m[1] + " " + m[2], true
}

// FindDateRange extracts a "from A to/until B" phrase.
func FindDateRange(docContext string) (start, end string, ok bool) {
	m := dateRangePattern.FindStringSubmatch(docContext)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// HeuristicAnswer composes an answer from the duration and date-range
// patterns for duration-style questions, and the not-found sentinel for
// everything else.
func HeuristicAnswer(question, docContext string) string {
	lowQ := strings.ToLower(question)
	if !strings.Contains(lowQ, "duration") && !strings.Contains(lowQ, "period") && !strings.Contains(lowQ, "term") {
		return NotFoundAnswer
	}

	period, hasPeriod := FindPeriod(docContext)
	start, end, hasDates := FindDateRange(docContext)

	switch {
	case hasPeriod && hasDates:
		return fmt.Sprintf("The agreement duration is %s, from %s to %s.", period, start, end)
	case hasPeriod:
		return fmt.Sprintf("The agreement duration is %s.", period)
	case hasDates:
		return fmt.Sprintf("The agreement runs from %s to %s.", start, end)
	}
	return NotFoundAnswer
}
