package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID int // Task ID to delete
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Title string // Title of the deleted task
}

// DeleteTask is the use case for deleting a task and its history.
type DeleteTask struct {
	tasks  domain.TaskRepository
	locker domain.TaskLocker
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks domain.TaskRepository, locker domain.TaskLocker, logger domain.Logger) *DeleteTask {
	return &DeleteTask{
		tasks:  tasks,
		locker: locker,
		logger: logger,
	}
}

// Execute deletes a task with the given ID. Completion records go with it.
func (uc *DeleteTask) Execute(_ context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	task, unlock, err := shared.LockedTask(uc.locker, uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := uc.tasks.Delete(in.TaskID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(0, "task", fmt.Sprintf("deleted task #%d: %q", task.ID, task.Title))
	}

	return &DeleteTaskOutput{Title: task.Title}, nil
}
