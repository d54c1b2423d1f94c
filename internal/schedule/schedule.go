// Package schedule runs archive jobs on a cron schedule while recall is
// watching a workspace.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rcron "github.com/robfig/cron/v3"
)

// Job is the work executed on every tick.
type Job func() error

// Scheduler wraps a cron runner with a single registered job.
type Scheduler struct {
	cron   *rcron.Cron
	logger *slog.Logger
}

// New parses expr (standard five-field cron or a descriptor such as
// "@daily") and registers job under it.
func New(expr string, job Job, logger *slog.Logger) (*Scheduler, error) {
	c := rcron.New()
	_, err := c.AddFunc(expr, func() {
		start := time.Now()
		if err := job(); err != nil {
			logger.Error("schedule: job failed", slog.String("error", err.Error()))
			return
		}
		logger.Debug("schedule: job done", slog.Duration("took", time.Since(start)))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule: parse %q: %w", expr, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Validate reports whether expr is a schedule the scheduler accepts.
func Validate(expr string) error {
	if _, err := rcron.ParseStandard(expr); err != nil {
		return fmt.Errorf("schedule: parse %q: %w", expr, err)
	}
	return nil
}

// Next returns the next activation time after now.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now())
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits up
// to five seconds for a running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("schedule: started", slog.Time("next", s.Next()))
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.logger.Warn("schedule: stop timeout waiting for running job")
	}
	s.logger.Info("schedule: stopped")
	return nil
}
