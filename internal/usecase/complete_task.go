package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase/shared"
)

// CompleteTaskInput contains the parameters for completing a task.
type CompleteTaskInput struct {
	Date   domain.Date // Day to complete (zero = today)
	TaskID int         // Task ID to complete
}

// CompleteTaskOutput contains the result of completing a task.
type CompleteTaskOutput struct {
	Task   *domain.Task            // The task after completion
	Record domain.CompletionRecord // The stored completion record
}

// CompleteTask is the use case for recording a completion.
// Completing resets the accumulated value through the configured strategy
// and disables the task until it is reactivated.
//
// Fields are ordered to minimize memory padding.
type CompleteTask struct {
	tasks       domain.TaskRepository
	completions domain.CompletionRepository
	locker      domain.TaskLocker
	ids         domain.IDGenerator
	clock       domain.Clock
	logger      domain.Logger
	loc         *time.Location
	strategy    domain.RolloverStrategy
}

// NewCompleteTask creates a new CompleteTask use case.
func NewCompleteTask(
	tasks domain.TaskRepository,
	completions domain.CompletionRepository,
	locker domain.TaskLocker,
	ids domain.IDGenerator,
	strategy domain.RolloverStrategy,
	clock domain.Clock,
	loc *time.Location,
	logger domain.Logger,
) *CompleteTask {
	return &CompleteTask{
		tasks:       tasks,
		completions: completions,
		locker:      locker,
		ids:         ids,
		strategy:    strategy,
		clock:       clock,
		loc:         loc,
		logger:      logger,
	}
}

// Execute records a completion for the task on the requested date.
// The record is persisted before the task.
func (uc *CompleteTask) Execute(_ context.Context, in CompleteTaskInput) (*CompleteTaskOutput, error) {
	task, unlock, err := shared.LockedTask(uc.locker, uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	today := domain.Today(uc.clock, uc.loc)
	date := in.Date
	if date.IsZero() {
		date = today
	}

	exists, err := uc.completions.HasCompletion(task.ID, date)
	if err != nil {
		return nil, fmt.Errorf("check completion history: %w", err)
	}

	record, err := task.Complete(uc.strategy, domain.CompleteParams{
		RecordID:         uc.ids.NewID(),
		Date:             date,
		Today:            today,
		Now:              uc.clock.Now(),
		AlreadyCompleted: exists,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.completions.AddCompletion(record); err != nil {
		if errors.Is(err, domain.ErrAlreadyCompleted) {
			return nil, err
		}
		return nil, fmt.Errorf("save completion: %w", err)
	}
	if err := uc.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, "complete", fmt.Sprintf("completed %s, accumulated reset to %d", date, task.AccumulatedValue))
	}

	return &CompleteTaskOutput{Task: task, Record: record}, nil
}
