package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
	"github.com/lxopi/repgo/pkg/logging"
)

// WorkFunc executes one input and returns its value or an error. It should
// respect context cancellation; the context carries the per-attempt deadline
// when Config.AttemptTimeout is set.
type WorkFunc[T, R any] func(ctx context.Context, input T) (R, error)

// Dispatcher runs a work function across input slices with bounded
// concurrency, per-item retry, and ordered outcome collection. A Dispatcher
// is immutable and safe for concurrent use; each Run call is independent.
type Dispatcher[T, R any] struct {
	config Config
}

// New creates a dispatcher from the given configuration. An invalid
// configuration is the only error this package ever returns.
func New[T, R any](config Config) (*Dispatcher[T, R], error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Dispatcher[T, R]{config: config}, nil
}

// Run is a convenience for one-shot dispatches: it validates config, runs
// work across inputs, and returns the outcomes in input order.
func Run[T, R any](ctx context.Context, work WorkFunc[T, R], inputs []T, config Config) ([]Outcome[R], error) {
	d, err := New[T, R](config)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, work, inputs), nil
}

// workItem is one queued unit of work. Items and their retries share the
// same queue, so a retried item competes for a worker slot like a fresh one.
type workItem[T any] struct {
	index  int
	input  T
	failed int // failed attempts so far
}

// Run executes work for every input and returns one Outcome per input,
// ordered by input index regardless of completion order.
//
// Per-item errors never abort the run; the caller inspects the outcomes.
// Canceling ctx stops the run early: in-flight attempts finish (a success
// still counts), nothing is retried, and every item without a terminal
// outcome is returned with Err set to errors.ErrCanceled.
func (d *Dispatcher[T, R]) Run(ctx context.Context, work WorkFunc[T, R], inputs []T) []Outcome[R] {
	n := len(inputs)
	if n == 0 {
		return []Outcome[R]{}
	}

	// Every item occupies at most one queue slot at a time, so capacity n
	// guarantees re-enqueues never block.
	queue := make(chan workItem[T], n)
	for i, input := range inputs {
		queue <- workItem[T]{index: i, input: input}
	}

	outcomes := make([]Outcome[R], n)
	terminal := make([]bool, n)
	attempts := make([]int, n)

	tracker := &progressTracker{
		total:    n,
		callback: d.config.OnProgress,
		name:     d.config.label(),
	}

	pending := int64(n)
	var closeOnce sync.Once
	settle := func() {
		if atomic.AddInt64(&pending, -1) == 0 {
			closeOnce.Do(func() { close(queue) })
		}
	}

	workers := min(d.config.Concurrency, n)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case item, ok := <-queue:
					if !ok {
						return nil
					}
					if ctx.Err() != nil {
						// Drained after cancellation; the item stays
						// non-terminal and is swept below.
						return ctx.Err()
					}

					value, err := d.attempt(ctx, work, item.input)
					count := item.failed + 1
					attempts[item.index] = count

					if err == nil {
						outcomes[item.index] = Outcome[R]{Index: item.index, Value: value, Attempts: count}
						terminal[item.index] = true
						tracker.record(false)
						settle()
						continue
					}

					if ctx.Err() != nil {
						// The attempt was cut short (or raced) with
						// cancellation; not retried, not terminal.
						return ctx.Err()
					}

					if count <= d.config.MaxRetries {
						if !d.waitBackoff(ctx, count) {
							return ctx.Err()
						}
						queue <- workItem[T]{index: item.index, input: item.input, failed: count}
						continue
					}

					outcomes[item.index] = Outcome[R]{Index: item.index, Err: err, Attempts: count}
					terminal[item.index] = true
					tracker.record(true)
					settle()
				}
			}
		})
	}

	// The only error workers return is ctx.Err(); outcomes carry the rest.
	_ = g.Wait()

	for i := range outcomes {
		if !terminal[i] {
			outcomes[i] = Outcome[R]{Index: i, Err: rgerrors.ErrCanceled, Attempts: attempts[i]}
		}
	}

	return outcomes
}

// attempt executes one try of the work function, applying the per-attempt
// timeout and recovering panics into errors.
func (d *Dispatcher[T, R]) attempt(ctx context.Context, work WorkFunc[T, R], input T) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("work function panicked: %v\n%s", r, debug.Stack())
		}
	}()

	if d.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.AttemptTimeout)
		defer cancel()
	}

	return work(ctx, input)
}

// waitBackoff sleeps out the configured backoff delay before a retry.
// Returns false if the context was canceled while waiting.
func (d *Dispatcher[T, R]) waitBackoff(ctx context.Context, failed int) bool {
	if d.config.Backoff == nil {
		return true
	}
	delay := d.config.Backoff(failed)
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// progressTracker serializes progress updates and callback invocations.
type progressTracker struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
	callback  func(Progress)
	name      string
}

func (pt *progressTracker) record(failed bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.completed++
	if failed {
		pt.failed++
	}

	if pt.callback == nil {
		return
	}

	snapshot := Progress{Total: pt.total, Completed: pt.completed, Failed: pt.failed}
	func() {
		defer func() {
			if r := recover(); r != nil {
				logging.WithComponent(pt.name).
					WithField("recovered", r).
					Warn("progress callback panicked")
			}
		}()
		pt.callback(snapshot)
	}()
}
