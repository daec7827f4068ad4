package simplify

import (
	"context"
	"strings"
	"time"

	"github.com/aryan-2511/lexiclarus/pkg/logger"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter gates all remote simplification calls process-wide: a fixed
// number of in-flight calls plus an optional requests-per-second ceiling.
type Limiter struct {
	sem *semaphore.Weighted
	rps *rate.Limiter // nil when unlimited
}

// NewLimiter creates a limiter allowing maxConcurrent in-flight calls.
// requestsPerSecond of 0 disables rate limiting.
func NewLimiter(maxConcurrent int64, requestsPerSecond float64) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	var rps *rate.Limiter
	if requestsPerSecond > 0 {
		rps = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &Limiter{
		sem: semaphore.NewWeighted(maxConcurrent),
		rps: rps,
	}
}

// Acquire waits for rate clearance and an in-flight slot. Callers must
// Release after the attempt completes, before any backoff sleep.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.rps != nil {
		if err := l.rps.Wait(ctx); err != nil {
			return err
		}
	}
	return l.sem.Acquire(ctx, 1)
}

// Release returns the in-flight slot.
func (l *Limiter) Release() {
	l.sem.Release(1)
}

// Outcome is the result of one logical dispatch. Degraded means every
// attempt failed and Text is the original input unchanged.
type Outcome struct {
	Text     string
	Degraded bool
	Attempts int
}

// Dispatcher turns the unreliable, rate-limited remote call into a
// best-effort call with bounded concurrency and bounded retries.
type Dispatcher struct {
	caller         Caller
	limiter        *Limiter
	maxAttempts    int
	initialBackoff time.Duration
	log            logger.Logger
}

// NewDispatcher wraps caller with the shared limiter and retry policy.
func NewDispatcher(caller Caller, limiter *Limiter, maxAttempts int, initialBackoff time.Duration, log logger.Logger) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if initialBackoff <= 0 {
		initialBackoff = time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	return &Dispatcher{
		caller:         caller,
		limiter:        limiter,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		log:            log,
	}
}

// Dispatch simplifies one text unit. It never returns an error: after
// exhausting all attempts the original text comes back with Degraded set,
// which callers treat as the implicit "lower quality" signal.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) Outcome {
	backoff := d.initialBackoff

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err := d.limiter.Acquire(ctx); err != nil {
			d.log.Warn("dispatch canceled while waiting for slot", "attempt", attempt, "error", err)
			return Outcome{Text: text, Degraded: true, Attempts: attempt}
		}

		result, err := d.caller.Predict(ctx, Scalar(text))
		// The slot must be free during backoff so other pending calls
		// can proceed.
		d.limiter.Release()

		if err == nil {
			if simplified, ok := firstNonEmpty(result); ok {
				return Outcome{Text: simplified, Attempts: attempt}
			}
			d.log.Warn("empty simplifier result", "attempt", attempt)
		} else {
			d.log.Warn("simplifier call failed", "attempt", attempt, "error", err)
		}

		if attempt == d.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return Outcome{Text: text, Degraded: true, Attempts: attempt}
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	d.log.Error("simplifier exhausted all attempts, returning original text", "attempts", d.maxAttempts)
	return Outcome{Text: text, Degraded: true, Attempts: d.maxAttempts}
}

// DispatchBatch simplifies an ordered batch with one remote call per
// attempt. The result is positional: element i simplifies batch[i]. Any
// failure, including a result count that does not match the batch, counts
// as a failed attempt; after the last attempt the original batch comes
// back unchanged with degraded set. Partial positional guesses are
// rejected in favor of predictable whole-batch degradation.
func (d *Dispatcher) DispatchBatch(ctx context.Context, batch []string) (results []string, degraded bool) {
	backoff := d.initialBackoff

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err := d.limiter.Acquire(ctx); err != nil {
			d.log.Warn("batch dispatch canceled while waiting for slot", "attempt", attempt, "error", err)
			return batch, true
		}

		result, err := d.caller.Predict(ctx, Sequence(batch))
		d.limiter.Release()

		if err == nil {
			if simplified, ok := alignBatch(result, len(batch)); ok {
				return simplified, false
			}
			d.log.Warn("batch result count mismatch", "attempt", attempt, "size", len(batch))
		} else {
			d.log.Warn("batch simplify call failed", "attempt", attempt, "size", len(batch), "error", err)
		}

		if attempt == d.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return batch, true
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	d.log.Error("batch simplifier exhausted all attempts, keeping originals", "size", len(batch), "attempts", d.maxAttempts)
	return batch, true
}

// alignBatch maps a result onto a batch of size n: a sequence is taken
// positionally, a scalar is split on line breaks. A count mismatch
// discards the result entirely.
func alignBatch(r Result, n int) ([]string, bool) {
	var simplified []string
	switch r.Kind {
	case KindSequence:
		simplified = make([]string, 0, len(r.Texts))
		for _, t := range r.Texts {
			simplified = append(simplified, strings.TrimSpace(t))
		}
	case KindScalar:
		for _, line := range strings.Split(r.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				simplified = append(simplified, line)
			}
		}
	}

	if len(simplified) != n {
		return nil, false
	}
	return simplified, true
}

// firstNonEmpty extracts the usable text from a result: a non-empty
// scalar, or the first element of a non-empty sequence.
func firstNonEmpty(r Result) (string, bool) {
	switch r.Kind {
	case KindScalar:
		if s := strings.TrimSpace(r.Text); s != "" {
			return s, true
		}
	case KindSequence:
		if len(r.Texts) > 0 {
			if s := strings.TrimSpace(r.Texts[0]); s != "" {
				return s, true
			}
		}
	}
	return "", false
}
