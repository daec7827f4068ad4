package simplify

import (
	"context"
	"time"

	"github.com/aryan-2511/lexiclarus/internal/cache"
	"github.com/aryan-2511/lexiclarus/pkg/logger"
)

// Pipeline drives many clauses through the remote endpoint in fixed-size
// batches, one dispatch per batch, batches strictly in sequence so peak
// concurrency stays bounded by the per-batch fan-out. The output always
// has the same length and order as the input: a failed batch is
// backfilled with its original text, never dropped.
type Pipeline struct {
	dispatcher *Dispatcher
	batchSize  int
	cacheTTL   time.Duration
	results    cache.Cache // nil disables caching
	log        logger.Logger
}

// NewPipeline creates a batch pipeline over the shared dispatcher.
func NewPipeline(dispatcher *Dispatcher, batchSize int, results cache.Cache, cacheTTL time.Duration, log logger.Logger) *Pipeline {
	if batchSize <= 0 {
		batchSize = 5
	}
	if log == nil {
		log = logger.Default()
	}
	return &Pipeline{
		dispatcher: dispatcher,
		batchSize:  batchSize,
		cacheTTL:   cacheTTL,
		results:    results,
		log:        log,
	}
}

// SimplifyAll simplifies texts positionally. len(result) == len(texts)
// regardless of remote behavior.
func (p *Pipeline) SimplifyAll(ctx context.Context, texts []string) []string {
	out := make([]string, len(texts))

	// Resolve cache hits first; only misses go to the remote endpoint.
	var pending []int
	for i, text := range texts {
		if p.results != nil {
			if cached, found := p.results.Get(cache.Key(text)); found {
				out[i] = cached
				continue
			}
		}
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return out
	}
	p.log.Info("simplifying clauses", "total", len(texts), "cached", len(texts)-len(pending), "batch_size", p.batchSize)

	for start := 0; start < len(pending); start += p.batchSize {
		end := start + p.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		indexes := pending[start:end]

		batch := make([]string, len(indexes))
		for j, idx := range indexes {
			batch[j] = texts[idx]
		}

		simplified, degraded := p.dispatcher.DispatchBatch(ctx, batch)
		for j, idx := range indexes {
			out[idx] = simplified[j]
			if !degraded && p.results != nil {
				if err := p.results.Set(cache.Key(texts[idx]), simplified[j], p.cacheTTL); err != nil {
					p.log.Warn("cache write failed", "error", err)
				}
			}
		}
	}

	return out
}
