package clause

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aryan-2511/lexiclarus/internal/llm"
	"github.com/aryan-2511/lexiclarus/internal/model"
	"github.com/aryan-2511/lexiclarus/pkg/logger"
)

// ErrNoClauses means nothing could be segmented: the one condition where
// analysis refuses to degrade further, since there is nothing to analyze.
var ErrNoClauses = errors.New("no clauses identified in the document")

const segmentPromptFmt = `Split the following legal document text into distinct clauses.
Output must be a JSON array of strings only, one clause per element.

---
%s
---`

// Segmenter splits full document text into clause-sized units. With a
// generative provider each chunk is segmented by the model; without one
// it falls back to blank-line paragraph splitting.
type Segmenter struct {
	provider llm.Provider // nil = paragraph fallback
	chunker  *Chunker
	log      logger.Logger
}

// NewSegmenter creates a segmenter. provider may be nil.
func NewSegmenter(provider llm.Provider, chunker *Chunker, log logger.Logger) *Segmenter {
	if log == nil {
		log = logger.Default()
	}
	return &Segmenter{provider: provider, chunker: chunker, log: log}
}

// Split segments text into ordered, 1-indexed clauses.
func (s *Segmenter) Split(ctx context.Context, text string) ([]model.Clause, error) {
	var texts []string
	if s.provider != nil {
		texts = s.generativeSplit(ctx, text)
	} else {
		texts = SplitParagraphs(text)
	}

	if len(texts) == 0 {
		return nil, ErrNoClauses
	}
	return model.NewClauses(texts), nil
}

// generativeSplit asks the model for a JSON array of clauses per chunk.
// A chunk whose response cannot be parsed is kept whole: extraction fails
// open, never failing the request for one bad response.
func (s *Segmenter) generativeSplit(ctx context.Context, text string) []string {
	chunks := s.chunker.Chunks(text)
	s.log.Info("segmenting document", "chunks", len(chunks))

	var clauses []string
	for i, chunk := range chunks {
		raw, err := s.provider.Generate(ctx, fmt.Sprintf(segmentPromptFmt, chunk))
		if err != nil {
			s.log.Warn("segmentation call failed, keeping chunk whole", "chunk", i+1, "error", err)
			clauses = append(clauses, chunk)
			continue
		}

		parsed, err := ParseClauseList(raw)
		if err != nil {
			s.log.Warn("unparseable segmentation response, keeping chunk whole", "chunk", i+1, "error", err)
			clauses = append(clauses, chunk)
			continue
		}
		clauses = append(clauses, parsed...)
	}

	return clauses
}

// ParseClauseList decodes a model response expected to be a JSON array of
// strings, tolerating markdown code fences around it.
func ParseClauseList(raw string) ([]string, error) {
	raw = StripCodeFences(raw)

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("parse clause list: %w", err)
	}

	var clauses []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			clauses = append(clauses, item)
		}
	}
	if len(clauses) == 0 {
		return nil, fmt.Errorf("parse clause list: empty array")
	}
	return clauses, nil
}

// StripCodeFences removes a surrounding ```json ... ``` block if present.
func StripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// SplitParagraphs is the last-resort segmentation: split on blank lines,
// keeping the whole text as one clause if there are no breaks.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	if len(paragraphs) == 0 {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}
	return paragraphs
}
