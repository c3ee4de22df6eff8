package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/lxopi/repgo/pkg/common/validation"
)

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Config holds configuration options for creating an AckLimiter.
type Config struct {
	// Interval is the minimum time between acknowledged waits.
	Interval time.Duration

	// Name labels the limiter in logs and metrics. Defaults to "ratelimit".
	Name string

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock
}

func (c Config) label() string {
	if c.Name != "" {
		return c.Name
	}
	return "ratelimit"
}

// AckLimiter is an acknowledge-gated rate limiter. Unlike a token bucket it
// only throttles after the caller has acknowledged hitting a limit: Ack arms
// the gate, and the next Wait blocks until the configured interval has
// elapsed since the previous wait. Unacknowledged Waits return immediately,
// so well-behaved call sites pay nothing.
//
// This suits APIs that signal throttling out of band (a 429, a quota header)
// where blocking every call to the provider's worst-case rate would waste
// most of the quota.
type AckLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	clock    Clock
	name     string
	last     time.Time
	armed    bool
}

// New creates an AckLimiter that enforces the given minimum interval
// between acknowledged operations.
func New(interval time.Duration) (*AckLimiter, error) {
	return NewWithConfig(Config{Interval: interval})
}

// NewWithConfig creates an AckLimiter from a full configuration.
func NewWithConfig(config Config) (*AckLimiter, error) {
	if err := validation.ValidatePositiveDuration("ratelimit", "interval", config.Interval); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}

	return &AckLimiter{
		interval: config.Interval,
		clock:    config.Clock,
		name:     config.label(),
		last:     config.Clock.Now(),
	}, nil
}

// Ack arms the gate: the next Wait will block out the remainder of the
// interval. Safe to call from any goroutine, idempotent until the next Wait.
func (l *AckLimiter) Ack() {
	l.mu.Lock()
	l.armed = true
	l.mu.Unlock()
}

// Armed reports whether the next Wait will throttle.
func (l *AckLimiter) Armed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.armed
}

// Wait blocks until the interval since the last wait has elapsed, but only
// when the gate is armed. It disarms the gate on return. Returns the
// context's error if canceled while waiting.
//
// Wait serializes concurrent callers; only one goroutine sleeps out the
// delay, the rest proceed once the gate is clear.
func (l *AckLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.armed {
		return nil
	}

	delay := l.interval - l.clock.Now().Sub(l.last)
	if delay > 0 {
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	l.last = l.clock.Now()
	l.armed = false
	return nil
}

// Delay returns how long an armed Wait would block right now. Zero when the
// gate is disarmed or the interval has already passed.
func (l *AckLimiter) Delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.armed {
		return 0
	}
	delay := l.interval - l.clock.Now().Sub(l.last)
	if delay < 0 {
		return 0
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
