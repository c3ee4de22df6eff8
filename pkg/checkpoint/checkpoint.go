package checkpoint

import (
	"context"
	"time"
)

// Store persists progress checkpoints between runs: a single last-run
// timestamp and a per-key timestamp memory for jobs that track many
// independent cursors.
//
// Loads never fail on missing or corrupt state; implementations fall back
// to a sane default (now for LastRun, empty for Memory) so a fresh
// deployment starts cleanly. Real read failures, such as permission
// errors, do surface.
type Store interface {
	// LastRun returns the persisted last-run timestamp, or the current
	// time if none is stored.
	LastRun(ctx context.Context) (time.Time, error)

	// SetLastRun persists t as the last-run timestamp. A zero t means now.
	SetLastRun(ctx context.Context, t time.Time) error

	// Memory returns the persisted per-key timestamps, or an empty map if
	// none are stored.
	Memory(ctx context.Context) (map[int]time.Time, error)

	// SetMemory persists the per-key timestamps, replacing the stored set.
	SetMemory(ctx context.Context, memory map[int]time.Time) error
}
