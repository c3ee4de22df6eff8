package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lxopi/repgo/internal/testutil"
	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Concurrency: 2}, false},
		{"valid with retries", Config{Concurrency: 1, MaxRetries: 3}, false},
		{"zero concurrency", Config{Concurrency: 0}, true},
		{"negative concurrency", Config{Concurrency: -1}, true},
		{"negative retries", Config{Concurrency: 2, MaxRetries: -1}, true},
		{"negative timeout", Config{Concurrency: 2, AttemptTimeout: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[int, int](tt.config)
			if tt.wantErr {
				testutil.AssertError(t, err)
				if !rgerrors.IsValidationError(err) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			} else {
				testutil.AssertNoError(t, err)
			}
		})
	}
}

func TestRunInvalidConfigBeforeWork(t *testing.T) {
	var started int32
	work := func(ctx context.Context, n int) (int, error) {
		atomic.AddInt32(&started, 1)
		return n, nil
	}

	_, err := Run(context.Background(), work, []int{1, 2, 3}, Config{Concurrency: 0})
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, atomic.LoadInt32(&started), int32(0))
}

func TestRunEmptyInputs(t *testing.T) {
	work := func(ctx context.Context, n int) (int, error) { return n, nil }

	outcomes, err := Run(context.Background(), work, nil, Config{Concurrency: 4})
	testutil.AssertNoError(t, err)
	if outcomes == nil {
		t.Fatal("outcomes should be empty, not nil")
	}
	testutil.AssertEqual(t, len(outcomes), 0)
}

func TestRunOrdering(t *testing.T) {
	const numItems = 50
	inputs := make([]int, numItems)
	for i := range inputs {
		inputs[i] = i
	}

	// Randomized delays make completion order diverge from input order.
	work := func(ctx context.Context, n int) (int, error) {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		return n * 2, nil
	}

	outcomes, err := Run(context.Background(), work, inputs, Config{Concurrency: 8})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(outcomes), numItems)

	for i, o := range outcomes {
		testutil.AssertEqual(t, o.Index, i)
		testutil.AssertEqual(t, o.Success(), true)
		testutil.AssertEqual(t, o.Value, i*2)
		testutil.AssertEqual(t, o.Attempts, 1)
	}
}

func TestRunPerItemFailure(t *testing.T) {
	work := func(ctx context.Context, n int) (float64, error) {
		if n == 0 {
			return 0, errors.New("division by zero")
		}
		return 1.0 / float64(n), nil
	}

	outcomes, err := Run(context.Background(), work, []int{1, 0, 2}, Config{Concurrency: 3})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(outcomes), 3)

	testutil.AssertEqual(t, outcomes[0].Success(), true)
	testutil.AssertEqual(t, outcomes[0].Value, 1.0)

	testutil.AssertEqual(t, outcomes[1].Success(), false)
	testutil.AssertEqual(t, outcomes[1].Attempts, 1)
	testutil.AssertEqual(t, outcomes[1].Err.Error(), "division by zero")

	testutil.AssertEqual(t, outcomes[2].Success(), true)
	testutil.AssertEqual(t, outcomes[2].Value, 0.5)
}

// flakyWork fails the first k attempts per item, then succeeds.
func flakyWork(k int) WorkFunc[int, int] {
	var mu sync.Mutex
	failures := make(map[int]int)

	return func(ctx context.Context, n int) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		if failures[n] < k {
			failures[n]++
			return 0, fmt.Errorf("transient failure %d", failures[n])
		}
		return n, nil
	}
}

func TestRetryBound(t *testing.T) {
	const k = 3

	t.Run("enough retries succeeds", func(t *testing.T) {
		outcomes, err := Run(context.Background(), flakyWork(k), []int{7}, Config{
			Concurrency: 1,
			MaxRetries:  k,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, outcomes[0].Success(), true)
		testutil.AssertEqual(t, outcomes[0].Value, 7)
		testutil.AssertEqual(t, outcomes[0].Attempts, k+1)
	})

	t.Run("one retry short fails", func(t *testing.T) {
		outcomes, err := Run(context.Background(), flakyWork(k), []int{7}, Config{
			Concurrency: 1,
			MaxRetries:  k - 1,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, outcomes[0].Success(), false)
		testutil.AssertEqual(t, outcomes[0].Attempts, k)
	})
}

func TestConcurrencyBound(t *testing.T) {
	const limit = 3
	var active, highWater int32

	work := func(ctx context.Context, n int) (int, error) {
		now := atomic.AddInt32(&active, 1)
		for {
			hw := atomic.LoadInt32(&highWater)
			if now <= hw || atomic.CompareAndSwapInt32(&highWater, hw, now) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return n, nil
	}

	inputs := make([]int, 30)
	outcomes, err := Run(context.Background(), work, inputs, Config{Concurrency: limit})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(outcomes), 30)

	if hw := atomic.LoadInt32(&highWater); hw > limit {
		t.Errorf("high-water mark %d exceeds concurrency limit %d", hw, limit)
	}
}

func TestCancellation(t *testing.T) {
	const numItems = 10
	const fastItems = 4

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inputs := make([]int, numItems)
	for i := range inputs {
		inputs[i] = i
	}

	// The first items complete quickly; the rest block until canceled.
	work := func(ctx context.Context, n int) (int, error) {
		if n < fastItems {
			return n, nil
		}
		<-ctx.Done()
		return 0, ctx.Err()
	}

	cfg := Config{
		Concurrency: 2,
		MaxRetries:  5, // must not matter once canceled
		OnProgress: func(p Progress) {
			if p.Completed == fastItems {
				cancel()
			}
		},
	}

	outcomes, err := Run(ctx, work, inputs, cfg)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(outcomes), numItems)

	var succeeded, canceled int
	for i, o := range outcomes {
		testutil.AssertEqual(t, o.Index, i)
		switch {
		case o.Success():
			succeeded++
		case o.Canceled():
			canceled++
		default:
			t.Errorf("item %d: unexpected terminal failure: %v", i, o.Err)
		}
	}

	testutil.AssertEqual(t, succeeded, fastItems)
	testutil.AssertEqual(t, canceled, numItems-fastItems)
}

func TestProgressReporting(t *testing.T) {
	const numItems = 20
	inputs := make([]int, numItems)
	for i := range inputs {
		inputs[i] = i
	}

	work := func(ctx context.Context, n int) (int, error) {
		if n%5 == 0 {
			return 0, errors.New("every fifth fails")
		}
		return n, nil
	}

	var inCallback int32
	var snapshots []Progress

	cfg := Config{
		Concurrency: 6,
		OnProgress: func(p Progress) {
			if atomic.AddInt32(&inCallback, 1) != 1 {
				t.Error("progress callbacks overlapped")
			}
			snapshots = append(snapshots, p)
			atomic.AddInt32(&inCallback, -1)
		},
	}

	outcomes, err := Run(context.Background(), work, inputs, cfg)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(outcomes), numItems)
	testutil.AssertEqual(t, len(snapshots), numItems)

	// Completed is monotonically increasing, one step per callback.
	for i, p := range snapshots {
		testutil.AssertEqual(t, p.Total, numItems)
		testutil.AssertEqual(t, p.Completed, i+1)
	}

	last := snapshots[len(snapshots)-1]
	testutil.AssertEqual(t, last.Completed, numItems)
	testutil.AssertEqual(t, last.Failed, 4)
	testutil.AssertEqual(t, last.Remaining(), 0)
	testutil.AssertEqual(t, last.Succeeded(), numItems-4)
}

func TestProgressCallbackPanic(t *testing.T) {
	work := func(ctx context.Context, n int) (int, error) { return n, nil }

	cfg := Config{
		Concurrency: 2,
		OnProgress:  func(Progress) { panic("bad callback") },
	}

	outcomes, err := Run(context.Background(), work, []int{1, 2, 3}, cfg)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(outcomes), 3)
	for _, o := range outcomes {
		testutil.AssertEqual(t, o.Success(), true)
	}
}

func TestAttemptTimeout(t *testing.T) {
	t.Run("timeout is terminal without retries", func(t *testing.T) {
		work := func(ctx context.Context, n int) (int, error) {
			select {
			case <-time.After(200 * time.Millisecond):
				return n, nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}

		outcomes, err := Run(context.Background(), work, []int{1}, Config{
			Concurrency:    1,
			AttemptTimeout: 20 * time.Millisecond,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, outcomes[0].Success(), false)
		testutil.AssertEqual(t, errors.Is(outcomes[0].Err, context.DeadlineExceeded), true)
	})

	t.Run("timeout is retryable", func(t *testing.T) {
		var calls int32
		work := func(ctx context.Context, n int) (int, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				<-ctx.Done()
				return 0, ctx.Err()
			}
			return n, nil
		}

		outcomes, err := Run(context.Background(), work, []int{1}, Config{
			Concurrency:    1,
			MaxRetries:     1,
			AttemptTimeout: 20 * time.Millisecond,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, outcomes[0].Success(), true)
		testutil.AssertEqual(t, outcomes[0].Attempts, 2)
	})
}

func TestWorkFunctionPanic(t *testing.T) {
	work := func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			panic("boom")
		}
		return n, nil
	}

	outcomes, err := Run(context.Background(), work, []int{0, 1, 2}, Config{Concurrency: 3})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, outcomes[0].Success(), true)
	testutil.AssertEqual(t, outcomes[2].Success(), true)

	testutil.AssertEqual(t, outcomes[1].Success(), false)
	if !strings.Contains(outcomes[1].Err.Error(), "panicked") {
		t.Errorf("panic error should mention the panic, got %v", outcomes[1].Err)
	}
}

func TestBackoffDelayApplied(t *testing.T) {
	const delay = 50 * time.Millisecond

	start := time.Now()
	outcomes, errRun := Run(context.Background(), flakyWork(1), []int{1}, Config{
		Concurrency: 1,
		MaxRetries:  1,
		Backoff:     ConstantBackoff(delay),
	})
	elapsed := time.Since(start)

	testutil.AssertNoError(t, errRun)
	testutil.AssertEqual(t, outcomes[0].Success(), true)
	testutil.AssertEqual(t, outcomes[0].Attempts, 2)
	if elapsed < delay {
		t.Errorf("run finished in %v, expected at least the %v backoff", elapsed, delay)
	}
}

func TestRunRepeatable(t *testing.T) {
	d, err := New[int, int](Config{Concurrency: 4})
	testutil.AssertNoError(t, err)

	work := func(ctx context.Context, n int) (int, error) { return n * n, nil }
	inputs := []int{1, 2, 3, 4, 5}

	first := d.Run(context.Background(), work, inputs)
	second := d.Run(context.Background(), work, inputs)

	testutil.AssertEqual(t, len(first), len(second))
	for i := range first {
		testutil.AssertEqual(t, first[i].Value, second[i].Value)
		testutil.AssertEqual(t, first[i].Success(), second[i].Success())
	}
}

func TestPreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var started int32
	work := func(ctx context.Context, n int) (int, error) {
		atomic.AddInt32(&started, 1)
		return n, nil
	}

	outcomes, err := Run(ctx, work, []int{1, 2, 3}, Config{Concurrency: 2})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(outcomes), 3)

	for _, o := range outcomes {
		testutil.AssertEqual(t, o.Canceled(), true)
		testutil.AssertEqual(t, o.Attempts, 0)
	}
	testutil.AssertEqual(t, atomic.LoadInt32(&started), int32(0))
}
