package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase/shared"
)

// EditTaskInput contains the parameters for editing a task.
// All fields except TaskID are optional. Only non-nil fields will be updated.
// Fields are ordered to minimize memory padding.
type EditTaskInput struct {
	Title       *string          // New title (nil = no change)
	Description *string          // New description (nil = no change)
	Priority    *domain.Priority // New priority (nil = no change)
	StartDate   *domain.Date     // New start date (nil = no change)
	EndDate     *domain.Date     // New end date (nil = no change)
	DailyTarget *int             // New daily target (nil = no change)
	TaskID      int              // Task ID to edit (required)
}

func (in EditTaskInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Priority == nil &&
		in.StartDate == nil && in.EndDate == nil && in.DailyTarget == nil
}

// EditTaskOutput contains the result of editing a task.
type EditTaskOutput struct {
	Task *domain.Task // The updated task
}

// EditTask is the use case for editing an existing task.
// The accumulated value and last processed date are left as they are.
type EditTask struct {
	tasks  domain.TaskRepository
	locker domain.TaskLocker
	clock  domain.Clock
	logger domain.Logger
}

// NewEditTask creates a new EditTask use case.
func NewEditTask(tasks domain.TaskRepository, locker domain.TaskLocker, clock domain.Clock, logger domain.Logger) *EditTask {
	return &EditTask{
		tasks:  tasks,
		locker: locker,
		clock:  clock,
		logger: logger,
	}
}

// Execute edits a task with the given input.
func (uc *EditTask) Execute(_ context.Context, in EditTaskInput) (*EditTaskOutput, error) {
	if in.empty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	task, unlock, err := shared.LockedTask(uc.locker, uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var changed []string
	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
		changed = append(changed, "title")
	}
	if in.Description != nil {
		task.Description = *in.Description
		changed = append(changed, "description")
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
		changed = append(changed, "priority")
	}
	if in.StartDate != nil {
		task.StartDate = *in.StartDate
		changed = append(changed, "start")
	}
	if in.EndDate != nil {
		task.EndDate = *in.EndDate
		changed = append(changed, "end")
	}
	if in.DailyTarget != nil {
		task.DailyTargetValue = *in.DailyTarget
		changed = append(changed, "target")
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	task.Updated = uc.clock.Now()

	if err := uc.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, "task", "edited: "+strings.Join(changed, ", "))
	}

	return &EditTaskOutput{Task: task}, nil
}
