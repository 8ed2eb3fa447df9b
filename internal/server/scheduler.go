package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/usecase"
)

// RolloverFunc runs one batch rollover.
type RolloverFunc func(ctx context.Context) (*usecase.ProcessRolloverOutput, error)

// Scheduler runs the batch rollover on a fixed interval.
type Scheduler struct {
	run      RolloverFunc
	logger   *slog.Logger
	interval time.Duration
}

// NewScheduler creates a scheduler that processes every eligible task of c.
func NewScheduler(c *app.Container, interval time.Duration) *Scheduler {
	return NewSchedulerFunc(func(ctx context.Context) (*usecase.ProcessRolloverOutput, error) {
		return c.ProcessRolloverUseCase().Execute(ctx, usecase.ProcessRolloverInput{})
	}, interval, c.Slog)
}

// NewSchedulerFunc creates a scheduler around an arbitrary rollover function.
func NewSchedulerFunc(run RolloverFunc, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{run: run, logger: logger, interval: interval}
}

// Run processes once immediately and then on every tick until ctx is
// cancelled. A non-positive interval disables the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("rollover scheduler disabled")
		return nil
	}

	s.logger.Info("rollover scheduler started", "interval", s.interval)
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("rollover scheduler stopped")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single batch and logs its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	out, err := s.run(ctx)
	if err != nil {
		s.logger.Error("scheduled rollover failed", "error", err)
		return
	}
	for _, f := range out.Failures {
		s.logger.Warn("scheduled rollover task failed", "task", f.TaskID, "error", f.Err)
	}
	s.logger.Info("scheduled rollover finished",
		"date", out.Date.String(),
		"processed", len(out.Results),
		"skipped", out.Skipped,
		"failed", len(out.Failures),
	)
}
