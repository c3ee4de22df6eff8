package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
	"github.com/lxopi/repgo/pkg/common/validation"
	"github.com/lxopi/repgo/pkg/logging"
)

// Job is the unit of scheduled work. The context is canceled when the
// repeater stops; long jobs should honor it.
type Job func(ctx context.Context)

// Entry describes one scheduled job.
type Entry struct {
	ID      string
	NextRun time.Time
	Created time.Time
}

// Config holds configuration options for creating a Repeater.
type Config struct {
	// Location resolves cron expressions. Defaults to time.Local.
	Location *time.Location

	// TickInterval is how often due jobs are checked. Defaults to 50ms.
	TickInterval time.Duration
}

type job struct {
	id       string
	run      Job
	nextRun  time.Time
	interval time.Duration // zero for cron and one-shot jobs
	cronExpr cron.Schedule // nil for interval and one-shot jobs
	created  time.Time
}

// Repeater runs jobs on fixed intervals, cron expressions, or at a single
// point in time. Jobs run on their own goroutines; a slow job never delays
// the others, and a panicking job is logged and rescheduled.
type Repeater struct {
	location     *time.Location
	tickInterval time.Duration
	cronParser   cron.Parser

	mu      sync.Mutex
	jobs    map[string]*job
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates a Repeater with default configuration.
func New() *Repeater {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Repeater from a full configuration.
func NewWithConfig(config Config) *Repeater {
	location := config.Location
	if location == nil {
		location = time.Local
	}
	tickInterval := config.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	return &Repeater{
		location:     location,
		tickInterval: tickInterval,
		cronParser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		jobs:         make(map[string]*job),
	}
}

// Every schedules run to repeat on a fixed interval, first firing one
// interval from now.
func (r *Repeater) Every(id string, interval time.Duration, run Job) error {
	if err := validation.ValidatePositiveDuration("schedule", "interval", interval); err != nil {
		return err
	}
	return r.add(&job{
		id:       id,
		run:      run,
		nextRun:  time.Now().Add(interval),
		interval: interval,
	})
}

// Cron schedules run on a standard five-field cron expression.
func (r *Repeater) Cron(id, expr string, run Job) error {
	if err := validation.ValidateNotEmpty("schedule", "expr", expr); err != nil {
		return err
	}
	sched, err := r.cronParser.Parse(expr)
	if err != nil {
		return rgerrors.NewValidationError("schedule", "expr", expr, "invalid cron expression").
			WithHint(err.Error())
	}
	return r.add(&job{
		id:       id,
		run:      run,
		nextRun:  sched.Next(time.Now().In(r.location)),
		cronExpr: sched,
	})
}

// At schedules run once at the given time.
func (r *Repeater) At(id string, when time.Time, run Job) error {
	if when.IsZero() {
		return rgerrors.NewValidationError("schedule", "when", when, "cannot be zero")
	}
	return r.add(&job{id: id, run: run, nextRun: when})
}

func (r *Repeater) add(j *job) error {
	if err := validation.ValidateNotEmpty("schedule", "id", j.id); err != nil {
		return err
	}
	if j.run == nil {
		return rgerrors.NewValidationError("schedule", "job", nil, "cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[j.id]; exists {
		return rgerrors.NewValidationError("schedule", "id", j.id, "already scheduled").
			WithHint("cancel the existing job first")
	}

	j.created = time.Now()
	r.jobs[j.id] = j
	return nil
}

// Cancel removes a job. Returns false if no job has that id.
func (r *Repeater) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[id]; !exists {
		return false
	}
	delete(r.jobs, id)
	return true
}

// List returns the scheduled jobs ordered by next run time.
func (r *Repeater) List() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]Entry, 0, len(r.jobs))
	for _, j := range r.jobs {
		entries = append(entries, Entry{ID: j.id, NextRun: j.nextRun, Created: j.created})
	}
	sort.Slice(entries, func(i, k int) bool {
		return entries[i].NextRun.Before(entries[k].NextRun)
	})
	return entries
}

// Start begins dispatching due jobs. Returns ErrClosed if already running.
func (r *Repeater) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return rgerrors.ErrClosed
	}
	r.running = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, r.done)
	return nil
}

// Stop cancels the job context and waits for the loop and all in-flight
// jobs to return. Safe to call more than once.
func (r *Repeater) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	<-done
	r.wg.Wait()
}

func (r *Repeater) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.fireDue(ctx, now)
		}
	}
}

func (r *Repeater) fireDue(ctx context.Context, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, j := range r.jobs {
		if j.nextRun.After(now) {
			continue
		}

		switch {
		case j.cronExpr != nil:
			j.nextRun = j.cronExpr.Next(now.In(r.location))
		case j.interval > 0:
			j.nextRun = now.Add(j.interval)
		default:
			delete(r.jobs, id)
		}

		r.wg.Add(1)
		go r.runJob(ctx, j)
	}
}

func (r *Repeater) runJob(ctx context.Context, j *job) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			logging.WithComponent("schedule").
				WithField("job", j.id).
				WithField("recovered", rec).
				Warn("scheduled job panicked")
		}
	}()

	j.run(ctx)
}
