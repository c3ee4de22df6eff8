package dispatch

import "time"

// BackoffFunc computes the delay before a retry. The argument is the number
// of failed attempts so far, starting at 1 for the first retry.
type BackoffFunc func(attempt int) time.Duration

// NoBackoff re-enqueues retries immediately.
func NoBackoff() BackoffFunc {
	return func(int) time.Duration { return 0 }
}

// ConstantBackoff waits the same delay before every retry.
func ConstantBackoff(delay time.Duration) BackoffFunc {
	return func(int) time.Duration { return delay }
}

// ExponentialBackoff doubles the delay on each retry, starting at initial
// and capped at max.
func ExponentialBackoff(initial, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		delay := initial
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay >= max {
				return max
			}
		}
		if delay > max {
			return max
		}
		return delay
	}
}
