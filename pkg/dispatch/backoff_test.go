package dispatch

import (
	"testing"
	"time"

	"github.com/lxopi/repgo/internal/testutil"
)

func TestNoBackoff(t *testing.T) {
	b := NoBackoff()
	for attempt := 1; attempt <= 5; attempt++ {
		testutil.AssertEqual(t, b(attempt), time.Duration(0))
	}
}

func TestConstantBackoff(t *testing.T) {
	b := ConstantBackoff(250 * time.Millisecond)
	for attempt := 1; attempt <= 5; attempt++ {
		testutil.AssertEqual(t, b(attempt), 250*time.Millisecond)
	}
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(100*time.Millisecond, time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second}, // capped
		{10, time.Second},
	}

	for _, tt := range tests {
		testutil.AssertEqual(t, b(tt.attempt), tt.want)
	}
}

func TestExponentialBackoffZeroAttempt(t *testing.T) {
	b := ExponentialBackoff(100*time.Millisecond, time.Second)
	testutil.AssertEqual(t, b(0), 100*time.Millisecond)
}
