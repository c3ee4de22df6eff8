package dispatch

import (
	"errors"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
)

// Outcome is the terminal result of one work item.
type Outcome[R any] struct {
	// Index is the item's position in the original input slice.
	Index int

	// Value is the work function's return value. Only meaningful when
	// Err is nil.
	Value R

	// Err is the error from the item's final attempt. Items abandoned by
	// cancellation carry errors.ErrCanceled. Nil means success.
	Err error

	// Attempts is the number of attempts actually executed for this item.
	// Zero for items canceled before their first attempt started.
	Attempts int
}

// Success reports whether the item completed without error.
func (o Outcome[R]) Success() bool {
	return o.Err == nil
}

// Canceled reports whether the item was abandoned by cancellation rather
// than reaching a terminal success or failure.
func (o Outcome[R]) Canceled() bool {
	return errors.Is(o.Err, rgerrors.ErrCanceled)
}

// Progress is a snapshot of one dispatch run's counters. Completed counts
// items with any terminal outcome; Failed counts the subset that failed.
type Progress struct {
	Total     int
	Completed int
	Failed    int
}

// Remaining returns the number of items without a terminal outcome yet.
func (p Progress) Remaining() int {
	return p.Total - p.Completed
}

// Succeeded returns the number of items that completed successfully.
func (p Progress) Succeeded() int {
	return p.Completed - p.Failed
}
