package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase/shared"
)

// ProcessRolloverInput contains the parameters for a rollover run.
type ProcessRolloverInput struct {
	TaskID int // Single task to process (0 = every eligible task)
}

// TaskRolloverResult is the outcome for one processed task.
type TaskRolloverResult struct {
	Result domain.RolloverResult
	TaskID int
}

// RolloverFailure records a task whose rollover could not be saved.
type RolloverFailure struct {
	Err    error
	TaskID int
}

// ProcessRolloverOutput contains the result of a rollover run.
// Fields are ordered to minimize memory padding.
type ProcessRolloverOutput struct {
	Results  []TaskRolloverResult // Processed tasks, ordered by ID
	Failures []RolloverFailure    // Tasks that failed, ordered by ID
	Date     domain.Date          // Processing day
	Skipped  int                  // Candidates that were already current when locked
}

// ProcessRollover brings every eligible task's accumulated value up to date.
// A task is eligible when it is enabled, its last processed date is before
// today and it has not expired. Tasks are processed concurrently, each under
// its own lock.
//
// Fields are ordered to minimize memory padding.
type ProcessRollover struct {
	tasks       domain.TaskRepository
	completions domain.CompletionRepository
	locker      domain.TaskLocker
	clock       domain.Clock
	logger      domain.Logger
	loc         *time.Location
	strategy    domain.RolloverStrategy
	workers     int
}

// NewProcessRollover creates a new ProcessRollover use case.
func NewProcessRollover(
	tasks domain.TaskRepository,
	completions domain.CompletionRepository,
	locker domain.TaskLocker,
	strategy domain.RolloverStrategy,
	workers int,
	clock domain.Clock,
	loc *time.Location,
	logger domain.Logger,
) *ProcessRollover {
	if workers < 1 {
		workers = 1
	}
	return &ProcessRollover{
		tasks:       tasks,
		completions: completions,
		locker:      locker,
		strategy:    strategy,
		workers:     workers,
		clock:       clock,
		loc:         loc,
		logger:      logger,
	}
}

// errNotEligible marks a task that no longer needs rollover once locked.
var errNotEligible = errors.New("task does not need rollover")

// Execute runs the rollover for one task or for every eligible task.
// With a single TaskID, failures are returned as the error. In batch mode a
// failing task is recorded in Failures and the rest continue; only listing
// errors and context cancellation abort the run.
func (uc *ProcessRollover) Execute(ctx context.Context, in ProcessRolloverInput) (*ProcessRolloverOutput, error) {
	today := domain.Today(uc.clock, uc.loc)
	out := &ProcessRolloverOutput{Date: today}

	if in.TaskID != 0 {
		if _, err := shared.GetTask(uc.tasks, in.TaskID); err != nil {
			return nil, err
		}
		res, err := uc.processOne(in.TaskID, today)
		switch {
		case errors.Is(err, errNotEligible):
			out.Skipped = 1
		case err != nil:
			return nil, err
		default:
			out.Results = append(out.Results, TaskRolloverResult{TaskID: in.TaskID, Result: res})
		}
		return out, nil
	}

	candidates, err := uc.tasks.List(domain.TaskFilter{EnabledOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for _, t := range candidates {
		if !t.NeedsRollover(today) {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		id := t.ID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := uc.processOne(id, today)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, errNotEligible):
				out.Skipped++
			case err != nil:
				out.Failures = append(out.Failures, RolloverFailure{TaskID: id, Err: err})
				if uc.logger != nil {
					uc.logger.Error(id, "rollover", err.Error())
				}
			default:
				out.Results = append(out.Results, TaskRolloverResult{TaskID: id, Result: res})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(out.Results, func(a, b TaskRolloverResult) int { return a.TaskID - b.TaskID })
	slices.SortFunc(out.Failures, func(a, b RolloverFailure) int { return a.TaskID - b.TaskID })

	if uc.logger != nil {
		uc.logger.Info(0, "rollover", fmt.Sprintf("processed %d task(s) for %s, %d failed", len(out.Results), today, len(out.Failures)))
	}
	return out, nil
}

// processOne runs the engine for a single task under its lock.
// The task is re-read after locking so a concurrent completion is seen.
func (uc *ProcessRollover) processOne(taskID int, today domain.Date) (domain.RolloverResult, error) {
	task, unlock, err := shared.LockedTask(uc.locker, uc.tasks, taskID)
	if err != nil {
		return domain.RolloverResult{}, err
	}
	defer unlock()

	if !task.NeedsRollover(today) {
		return domain.RolloverResult{}, errNotEligible
	}

	records, err := uc.completions.ListCompletions(taskID)
	if err != nil {
		return domain.RolloverResult{}, fmt.Errorf("list completions: %w", err)
	}
	done := make(map[domain.Date]bool, len(records))
	for _, r := range records {
		done[r.Date] = true
	}

	res := uc.strategy.Rollover(task, today, func(d domain.Date) bool { return done[d] })
	task.ApplyRollover(res)
	task.Updated = uc.clock.Now()

	if err := uc.tasks.Save(task); err != nil {
		return domain.RolloverResult{}, fmt.Errorf("save task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(taskID, "rollover", fmt.Sprintf(
			"%s: accumulated=%d missed=%d completed=%d skipped=%d",
			today, res.AccumulatedValue, res.MissedDays, res.CompletedDays, res.SkippedDays))
	}
	return res, nil
}
