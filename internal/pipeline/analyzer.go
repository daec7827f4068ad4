// Package pipeline wires the analysis stages together: segmentation,
// batch simplification, risk tagging and question answering.
package pipeline

import (
	"context"
	"fmt"

	"github.com/aryan-2511/lexiclarus/internal/cache"
	"github.com/aryan-2511/lexiclarus/internal/clause"
	"github.com/aryan-2511/lexiclarus/internal/llm"
	"github.com/aryan-2511/lexiclarus/internal/model"
	"github.com/aryan-2511/lexiclarus/internal/qa"
	"github.com/aryan-2511/lexiclarus/internal/risk"
	"github.com/aryan-2511/lexiclarus/internal/simplify"
	"github.com/aryan-2511/lexiclarus/pkg/logger"
)

// Analyzer orchestrates the complete document analysis. All state is
// request-independent; each request's clause and result lists are local.
type Analyzer struct {
	segmenter  *clause.Segmenter
	simplifier *simplify.Pipeline
	riskAgent  *risk.Agent
	qaAgent    *qa.Agent
	log        logger.Logger
}

// NewAnalyzer builds an analyzer from configuration. A missing generative
// provider is not an error: every stage that uses it has a heuristic
// fallback and the service still produces (lower quality) results.
func NewAnalyzer(cfg *model.Config, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Default()
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		log.Warn("failed to initialize LLM provider, heuristic fallbacks active", "error", err)
		provider = nil
	}
	if provider == nil {
		log.Info("no generative provider configured, heuristic fallbacks active")
	} else {
		log.Info("generative provider configured", "provider", provider.Name())
	}

	client := simplify.NewClient(cfg.Simplifier, log)
	limiter := simplify.NewLimiter(cfg.Simplifier.MaxConcurrent, cfg.Simplifier.RequestsPerSecond)
	dispatcher := simplify.NewDispatcher(client, limiter, cfg.Simplifier.MaxAttempts, cfg.Simplifier.InitialBackoff, log)

	var results cache.Cache
	if cfg.Simplifier.CacheTTL > 0 {
		if cfg.Simplifier.CacheDir != "" {
			results = cache.NewLayeredCache(cfg.Simplifier.CacheTTL, cfg.Simplifier.CacheDir, cfg.Simplifier.CacheTTL)
		} else {
			results = cache.NewMemoryCache(cfg.Simplifier.CacheTTL, cfg.Simplifier.CacheTTL)
		}
	}

	counter := clause.NewTokenCounter(cfg.Chunking.Encoding)
	chunker := clause.NewChunker(counter, cfg.Chunking.TokenBudget)

	return &Analyzer{
		segmenter:  clause.NewSegmenter(provider, chunker, log),
		simplifier: simplify.NewPipeline(dispatcher, cfg.Simplifier.BatchSize, results, cfg.Simplifier.CacheTTL, log),
		riskAgent:  risk.NewAgent(provider, log),
		qaAgent:    qa.NewAgent(provider, log),
		log:        log,
	}
}

// AnalyzeDocument runs the full per-clause analysis over extracted text.
// The result list always zips 1:1 with the segmented clauses; the only
// error is clause.ErrNoClauses, when there is nothing to analyze.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, fullText string) ([]model.ClauseResult, error) {
	clauses, err := a.segmenter.Split(ctx, fullText)
	if err != nil {
		return nil, fmt.Errorf("segment document: %w", err)
	}
	a.log.Info("extracted clauses", "count", len(clauses))

	texts := make([]string, len(clauses))
	for i, c := range clauses {
		texts[i] = c.Text
	}

	simplified := a.simplifier.SimplifyAll(ctx, texts)

	results := make([]model.ClauseResult, len(clauses))
	for i, c := range clauses {
		results[i] = model.ClauseResult{
			ClauseNumber:   c.Index,
			OriginalClause: c.Text,
			SimplifiedText: simplified[i],
			RiskFlags:      a.riskAgent.Flags(ctx, c.Text),
		}
	}

	return results, nil
}

// Answer responds to a free-text question against document text.
func (a *Analyzer) Answer(ctx context.Context, question, docContext string) string {
	return a.qaAgent.Answer(ctx, question, docContext)
}
