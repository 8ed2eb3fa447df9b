package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/habit/internal/domain"
)

// NewTaskInput contains the parameters for creating a new task.
// Fields are ordered to minimize memory padding.
type NewTaskInput struct {
	Title       string          // Task title (required)
	Description string          // Task description (optional)
	Priority    domain.Priority // Priority (empty = medium)
	StartDate   domain.Date     // First day (zero = today)
	EndDate     domain.Date     // Last day (required)
	DailyTarget int             // Daily target value (>= 1)
}

// NewTaskOutput contains the result of creating a new task.
type NewTaskOutput struct {
	Task   *domain.Task // The created task
	TaskID int          // The ID of the created task
}

// NewTask is the use case for creating a new task.
type NewTask struct {
	tasks  domain.TaskRepository
	clock  domain.Clock
	loc    *time.Location
	logger domain.Logger
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(tasks domain.TaskRepository, clock domain.Clock, loc *time.Location, logger domain.Logger) *NewTask {
	return &NewTask{
		tasks:  tasks,
		clock:  clock,
		loc:    loc,
		logger: logger,
	}
}

// Execute creates a new task with the given input.
func (uc *NewTask) Execute(_ context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	now := uc.clock.Now()
	today := domain.Today(uc.clock, uc.loc)

	start := in.StartDate
	if start.IsZero() {
		start = today
	}
	params := domain.NewTaskParams{
		Title:            in.Title,
		Description:      in.Description,
		Priority:         in.Priority,
		StartDate:        start,
		EndDate:          in.EndDate,
		DailyTargetValue: in.DailyTarget,
	}

	// Validate before consuming an ID
	if _, err := domain.NewTask(0, params, today, now); err != nil {
		return nil, err
	}

	id, err := uc.tasks.NextID()
	if err != nil {
		return nil, fmt.Errorf("generate task ID: %w", err)
	}

	task, err := domain.NewTask(id, params, today, now)
	if err != nil {
		return nil, err
	}

	if err := uc.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(id, "task", fmt.Sprintf("created: %q target=%d %s..%s", task.Title, task.DailyTargetValue, task.StartDate, task.EndDate))
	}

	return &NewTaskOutput{Task: task, TaskID: id}, nil
}
