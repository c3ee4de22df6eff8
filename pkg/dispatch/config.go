package dispatch

import (
	"time"

	"github.com/lxopi/repgo/pkg/common/validation"
)

// Config holds configuration options for one dispatcher. A Config is
// validated once, at construction, and never mutated afterwards.
type Config struct {
	// Concurrency is the maximum number of items executed at the same time.
	// Must be greater than 0. The dispatcher never starts more workers than
	// there are inputs.
	Concurrency int

	// MaxRetries is the maximum number of retry attempts per item after the
	// first failure. Zero means failures are terminal immediately.
	MaxRetries int

	// AttemptTimeout bounds a single attempt. The work function receives a
	// context with this deadline; an attempt that exceeds it fails with
	// context.DeadlineExceeded and is retried like any other failure.
	// Zero means no per-attempt timeout.
	AttemptTimeout time.Duration

	// Backoff computes the delay before retry attempt n (1-based count of
	// failures so far). Nil means retries are re-enqueued immediately.
	Backoff BackoffFunc

	// OnProgress is invoked with a snapshot after every terminal outcome.
	// Invocations are serialized. A panicking callback is recovered and
	// logged; it never stops the dispatch.
	OnProgress func(Progress)

	// Name labels this dispatcher in logs and metrics. Empty means "dispatch".
	Name string
}

// validate checks the configuration, returning a ValidationError for the
// first offending field.
func (c Config) validate() error {
	if err := validation.ValidatePositive("dispatch", "concurrency", c.Concurrency); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative("dispatch", "maxretries", c.MaxRetries); err != nil {
		return err
	}
	if err := validation.ValidateNonNegativeDuration("dispatch", "attempttimeout", c.AttemptTimeout); err != nil {
		return err
	}
	return nil
}

// label returns the name used in logs and metrics.
func (c Config) label() string {
	if c.Name == "" {
		return "dispatch"
	}
	return c.Name
}
