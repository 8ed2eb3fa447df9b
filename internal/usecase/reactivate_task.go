package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase/shared"
)

// ReactivateTaskInput contains the parameters for reactivating a task.
type ReactivateTaskInput struct {
	TaskID int // Task ID to reactivate
}

// ReactivateTaskOutput contains the result of reactivating a task.
type ReactivateTaskOutput struct {
	Task           *domain.Task // The reactivated task
	AlreadyEnabled bool         // True if the task was already enabled
}

// ReactivateTask turns a disabled task back on.
// Completing a task disables it; this is the explicit way back.
type ReactivateTask struct {
	tasks  domain.TaskRepository
	locker domain.TaskLocker
	clock  domain.Clock
	logger domain.Logger
}

// NewReactivateTask creates a new ReactivateTask use case.
func NewReactivateTask(tasks domain.TaskRepository, locker domain.TaskLocker, clock domain.Clock, logger domain.Logger) *ReactivateTask {
	return &ReactivateTask{
		tasks:  tasks,
		locker: locker,
		clock:  clock,
		logger: logger,
	}
}

// Execute sets Enabled on the task. Accumulated value and last processed
// date are untouched.
func (uc *ReactivateTask) Execute(_ context.Context, in ReactivateTaskInput) (*ReactivateTaskOutput, error) {
	task, unlock, err := shared.LockedTask(uc.locker, uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if task.Enabled {
		return &ReactivateTaskOutput{Task: task, AlreadyEnabled: true}, nil
	}

	task.Enabled = true
	task.Updated = uc.clock.Now()
	if err := uc.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, "task", "reactivated")
	}

	return &ReactivateTaskOutput{Task: task}, nil
}
