package simplify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aryan-2511/lexiclarus/internal/cache"
)

func newTestPipeline(caller Caller, batchSize int, results cache.Cache, ttl time.Duration) *Pipeline {
	d := NewDispatcher(caller, NewLimiter(5, 0), 1, time.Millisecond, nil)
	return NewPipeline(d, batchSize, results, ttl, nil)
}

func echoBatch(prefix string) func(ctx context.Context, in Input) (Result, error) {
	return func(ctx context.Context, in Input) (Result, error) {
		out := make([]string, len(in.texts))
		for i, t := range in.texts {
			out[i] = prefix + t
		}
		return Result{Kind: KindSequence, Texts: out}, nil
	}
}

func clauses(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("clause %d", i+1)
	}
	return texts
}

func TestPipeline_LengthPreserved(t *testing.T) {
	for _, n := range []int{1, 4, 5, 6, 11, 23} {
		caller := &fakeCaller{fn: echoBatch("simple: ")}
		p := newTestPipeline(caller, 5, nil, 0)

		out := p.SimplifyAll(context.Background(), clauses(n))
		if len(out) != n {
			t.Errorf("n=%d: expected %d results, got %d", n, n, len(out))
		}
	}
}

func TestPipeline_OrderPreserved(t *testing.T) {
	caller := &fakeCaller{fn: echoBatch("simple: ")}
	p := newTestPipeline(caller, 3, nil, 0)

	in := clauses(7)
	out := p.SimplifyAll(context.Background(), in)
	for i, got := range out {
		want := "simple: " + in[i]
		if got != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestPipeline_IdentityFallbackOnError(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		return Result{}, errors.New("endpoint down")
	}}
	p := newTestPipeline(caller, 5, nil, 0)

	in := clauses(8)
	out := p.SimplifyAll(context.Background(), in)
	if len(out) != len(in) {
		t.Fatalf("expected %d results, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("position %d: expected original %q, got %q", i, in[i], out[i])
		}
	}
}

func TestPipeline_IdentityFallbackAfterRetries(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		return Result{}, errors.New("endpoint down")
	}}
	d := NewDispatcher(caller, NewLimiter(5, 0), 3, time.Millisecond, nil)
	p := NewPipeline(d, 5, nil, 0, nil)

	in := clauses(5)
	out := p.SimplifyAll(context.Background(), in)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("position %d: expected original, got %q", i, out[i])
		}
	}
	if got := caller.calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts for the single batch, got %d", got)
	}
}

func TestPipeline_CountMismatchDiscardsBatch(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		// One result short: the whole batch must be discarded.
		out := make([]string, 0, len(in.texts)-1)
		for _, txt := range in.texts[1:] {
			out = append(out, "simple: "+txt)
		}
		return Result{Kind: KindSequence, Texts: out}, nil
	}}
	p := newTestPipeline(caller, 5, nil, 0)

	in := clauses(5)
	out := p.SimplifyAll(context.Background(), in)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("position %d: expected original after mismatch, got %q", i, out[i])
		}
	}
}

func TestPipeline_ScalarSplitOnLineBreaks(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		lines := make([]string, len(in.texts))
		for i, txt := range in.texts {
			lines[i] = "simple: " + txt
		}
		return Result{Kind: KindScalar, Text: strings.Join(lines, "\n")}, nil
	}}
	p := newTestPipeline(caller, 3, nil, 0)

	in := clauses(3)
	out := p.SimplifyAll(context.Background(), in)
	for i := range in {
		if out[i] != "simple: "+in[i] {
			t.Errorf("position %d: expected split line, got %q", i, out[i])
		}
	}
}

func TestPipeline_BatchesAreContiguous(t *testing.T) {
	var sizes []int
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		sizes = append(sizes, len(in.texts))
		return echoBatch("s: ")(ctx, in)
	}}
	p := newTestPipeline(caller, 5, nil, 0)

	p.SimplifyAll(context.Background(), clauses(12))
	want := []int{5, 5, 2}
	if len(sizes) != len(want) {
		t.Fatalf("expected %d batches, got %v", len(want), sizes)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("batch %d: expected size %d, got %d", i, want[i], sizes[i])
		}
	}
}

func TestPipeline_CacheSkipsRemoteCalls(t *testing.T) {
	caller := &fakeCaller{fn: echoBatch("simple: ")}
	results := cache.NewMemoryCache(time.Minute, time.Minute)
	p := newTestPipeline(caller, 5, results, time.Minute)

	in := clauses(5)
	first := p.SimplifyAll(context.Background(), in)
	callsAfterFirst := caller.calls.Load()

	second := p.SimplifyAll(context.Background(), in)
	if got := caller.calls.Load(); got != callsAfterFirst {
		t.Errorf("expected no further remote calls on cached run, got %d extra", got-callsAfterFirst)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d: cached result %q differs from %q", i, second[i], first[i])
		}
	}
}

func TestPipeline_DegradedBatchNotCached(t *testing.T) {
	down := true
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		if down {
			return Result{}, errors.New("endpoint down")
		}
		return echoBatch("simple: ")(ctx, in)
	}}
	results := cache.NewMemoryCache(time.Minute, time.Minute)
	p := newTestPipeline(caller, 5, results, time.Minute)

	in := clauses(3)
	out := p.SimplifyAll(context.Background(), in)
	if out[0] != in[0] {
		t.Fatalf("expected degraded identity, got %q", out[0])
	}

	// Once the endpoint recovers, the same clauses must be retried, not
	// served from a cache of degraded results.
	down = false
	out = p.SimplifyAll(context.Background(), in)
	if out[0] != "simple: "+in[0] {
		t.Errorf("expected fresh result after recovery, got %q", out[0])
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	caller := &fakeCaller{fn: echoBatch("s: ")}
	p := newTestPipeline(caller, 5, nil, 0)

	out := p.SimplifyAll(context.Background(), nil)
	if len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
	if caller.calls.Load() != 0 {
		t.Errorf("expected no remote calls for empty input")
	}
}
