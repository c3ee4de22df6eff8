/*
Package ratelimit provides an acknowledge-gated rate limiter.

An AckLimiter throttles only after the caller reports hitting a limit. Ack
arms the gate; the next Wait blocks until the configured interval has
elapsed since the previous wait, then disarms it. Calls that were never
acknowledged pass through immediately.

	limiter, err := ratelimit.New(5 * time.Second)
	if err != nil {
		log.Fatal(err)
	}

	for _, item := range items {
		if err := limiter.Wait(ctx); err != nil {
			return err // canceled while throttled
		}
		resp, err := fetch(item)
		if errors.Is(err, errs.ErrRateLimited) {
			limiter.Ack()
		}
	}

This differs from a token bucket: steady traffic below the provider's limit
is never delayed, and the interval is only paid when the provider actually
pushed back. For proactive request pacing use golang.org/x/time/rate, as
pkg/httpclient does.

NewWithConfigAndMetrics wraps the limiter with Prometheus wait counters from
pkg/metrics.
*/
package ratelimit
