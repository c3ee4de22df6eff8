/*
Package dispatch runs a function across many inputs with a bounded pool of
workers, per-item retry with backoff, progress reporting, and ordered
outcome collection.

Basic usage:

	cfg := dispatch.Config{Concurrency: 4}
	outcomes, err := dispatch.Run(ctx, func(ctx context.Context, url string) ([]byte, error) {
		return fetch(ctx, url)
	}, urls, cfg)
	if err != nil {
		// only possible error: invalid configuration
		log.Fatal(err)
	}

	for _, o := range outcomes {
		if o.Success() {
			use(o.Value)
		} else {
			log.Printf("item %d failed after %d attempts: %v", o.Index, o.Attempts, o.Err)
		}
	}

Outcomes:

Exactly one Outcome is returned per input, in input order, no matter in
which order items complete. Per-item errors are captured, never raised: a
run "succeeds" even if every item failed, and the caller decides what a
failure means. The only error Run itself returns is a configuration
ValidationError, raised before any work starts.

Retry:

	cfg := dispatch.Config{
		Concurrency: 8,
		MaxRetries:  3,
		Backoff:     dispatch.ExponentialBackoff(100*time.Millisecond, 5*time.Second),
	}

A failed attempt is re-enqueued on the same queue as fresh items after the
backoff delay, so retries compete for worker slots fairly. MaxRetries
bounds retries per item; an item's Outcome records how many attempts it
actually took. AttemptTimeout bounds single attempts through the context
passed to the work function.

Progress:

	cfg.OnProgress = func(p dispatch.Progress) {
		fmt.Printf("%d/%d done, %d failed\n", p.Completed, p.Total, p.Failed)
	}

The callback sees every terminal outcome exactly once and invocations never
overlap. A panicking callback is logged and ignored.

Cancellation:

Canceling the context stops the run cooperatively: workers finish their
in-flight attempt, nothing is retried, and items that never reached a
terminal outcome come back with Err set to errors.ErrCanceled and
Canceled() reporting true.

Metrics:

NewWithConfigAndMetrics wraps a dispatcher with Prometheus counters and
histograms from pkg/metrics, labeled with Config.Name.
*/
package dispatch
