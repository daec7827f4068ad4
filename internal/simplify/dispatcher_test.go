package simplify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeCaller implements Caller for testing
type fakeCaller struct {
	fn    func(ctx context.Context, in Input) (Result, error)
	calls atomic.Int64
}

func (f *fakeCaller) Predict(ctx context.Context, in Input) (Result, error) {
	f.calls.Add(1)
	return f.fn(ctx, in)
}

func TestDispatcher_Success(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		return Result{Kind: KindScalar, Text: "plain words"}, nil
	}}
	d := NewDispatcher(caller, NewLimiter(5, 0), 3, time.Millisecond, nil)

	out := d.Dispatch(context.Background(), "heretofore the party of the first part")
	if out.Degraded {
		t.Fatal("expected success, got degraded outcome")
	}
	if out.Text != "plain words" {
		t.Errorf("expected simplified text, got %q", out.Text)
	}
	if out.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", out.Attempts)
	}
}

func TestDispatcher_SequenceFirstElement(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		return Result{Kind: KindSequence, Texts: []string{"first", "second"}}, nil
	}}
	d := NewDispatcher(caller, NewLimiter(5, 0), 3, time.Millisecond, nil)

	out := d.Dispatch(context.Background(), "original")
	if out.Degraded || out.Text != "first" {
		t.Errorf("expected first sequence element, got %+v", out)
	}
}

func TestDispatcher_IdentityFallback(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		return Result{}, errors.New("endpoint down")
	}}
	d := NewDispatcher(caller, NewLimiter(5, 0), 3, time.Millisecond, nil)

	original := "the lessee shall indemnify the lessor"
	out := d.Dispatch(context.Background(), original)
	if !out.Degraded {
		t.Fatal("expected degraded outcome")
	}
	if out.Text != original {
		t.Errorf("expected original text back, got %q", out.Text)
	}
	if got := caller.calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestDispatcher_EmptyResultCountsAsFailure(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		return Result{Kind: KindScalar, Text: "   "}, nil
	}}
	d := NewDispatcher(caller, NewLimiter(5, 0), 2, time.Millisecond, nil)

	out := d.Dispatch(context.Background(), "original")
	if !out.Degraded {
		t.Fatal("expected degraded outcome for whitespace-only results")
	}
	if got := caller.calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestDispatcher_BackoffDoubles(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time

	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		return Result{}, errors.New("flaky")
	}}

	initial := 30 * time.Millisecond
	d := NewDispatcher(caller, NewLimiter(5, 0), 3, initial, nil)
	d.Dispatch(context.Background(), "text")

	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}

	wait1 := stamps[1].Sub(stamps[0])
	wait2 := stamps[2].Sub(stamps[1])

	if wait1 < initial {
		t.Errorf("first backoff %v shorter than seed %v", wait1, initial)
	}
	if wait2 < 2*initial {
		t.Errorf("second backoff %v shorter than doubled seed %v", wait2, 2*initial)
	}
}

func TestDispatcher_ConcurrencyLimit(t *testing.T) {
	var inflight, peak atomic.Int64

	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		cur := inflight.Add(1)
		for {
			max := peak.Load()
			if cur <= max || peak.CompareAndSwap(max, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inflight.Add(-1)
		return Result{Kind: KindScalar, Text: "ok"}, nil
	}}

	limiter := NewLimiter(2, 0)
	d := NewDispatcher(caller, limiter, 1, time.Millisecond, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), "clause")
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("observed %d concurrent in-flight calls, limit is 2", got)
	}
}

func TestDispatcher_CanceledContext(t *testing.T) {
	caller := &fakeCaller{fn: func(ctx context.Context, in Input) (Result, error) {
		return Result{}, errors.New("down")
	}}
	d := NewDispatcher(caller, NewLimiter(1, 0), 3, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := d.Dispatch(ctx, "original")
	if !out.Degraded || out.Text != "original" {
		t.Errorf("expected degraded identity outcome on canceled context, got %+v", out)
	}
}
