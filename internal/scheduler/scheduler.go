// Package scheduler fires the periodic jobs of the service on a wall-clock
// schedule. It keeps no state between firings: the jobs themselves must be
// safe to run again for the same day or month.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pennywise/internal/calendar"
	"pennywise/internal/logger"
)

// maxWait bounds a single sleep so that clock changes are noticed.
const maxWait = time.Hour

// Job is a named unit of work fired by a Rule. firedAt is the scheduled
// firing time, or the current time for startup and manual runs.
type Job struct {
	Name string
	Rule Rule
	Run  func(ctx context.Context, firedAt time.Time) error
}

// Scheduler runs each registered job on its own loop. A job never overlaps
// with itself: the next firing is computed only after the current run returns.
type Scheduler struct {
	clock        calendar.Clock
	jobs         []Job
	runOnStartup bool
	after        func(time.Duration) <-chan time.Time
	log          *zap.SugaredLogger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRunOnStartup fires every job once as soon as Run starts.
func WithRunOnStartup(enabled bool) Option {
	return func(s *Scheduler) { s.runOnStartup = enabled }
}

// WithTimer replaces time.After, letting tests drive the loop with a mock clock.
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) { s.after = after }
}

// New creates a scheduler reading the current time from clock.
func New(clock calendar.Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock: clock,
		after: time.After,
		log:   logger.Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a job. It must be called before Run.
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []Job {
	return s.jobs
}

// Run blocks until ctx is cancelled. Job errors are logged and do not stop
// the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		g.Go(func() error {
			s.loop(ctx, job)
			return nil
		})
	}
	s.log.Infow("scheduler started", "jobs", len(s.jobs), "run_on_startup", s.runOnStartup)
	err := g.Wait()
	s.log.Info("scheduler stopped")
	return err
}

// RunNow fires the named job once, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.fire(ctx, job, s.clock.Now())
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	if s.runOnStartup {
		_ = s.fire(ctx, job, s.clock.Now())
	}
	for {
		next := job.Rule.Next(s.clock.Now())
		s.log.Debugw("next run scheduled", "job", job.Name, "at", next)
		if !s.waitUntil(ctx, next) {
			return
		}
		_ = s.fire(ctx, job, next)
	}
}

// waitUntil sleeps until the clock reaches t. It returns false when ctx is
// cancelled first.
func (s *Scheduler) waitUntil(ctx context.Context, t time.Time) bool {
	for {
		now := s.clock.Now()
		if !now.Before(t) {
			return true
		}
		d := t.Sub(now)
		if d > maxWait {
			d = maxWait
		}
		select {
		case <-ctx.Done():
			return false
		case <-s.after(d):
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, job Job, firedAt time.Time) (err error) {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	start := time.Now()
	log := s.log.With("job", job.Name, "fired_at", firedAt)
	log.Infow("job started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
			log.Errorw("job panicked", "panic", r)
		}
	}()

	if err = job.Run(ctx, firedAt); err != nil {
		log.Errorw("job failed", "error", err, "duration", time.Since(start))
		return err
	}
	log.Infow("job finished", "duration", time.Since(start))
	return nil
}
