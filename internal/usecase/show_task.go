package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID int // Task ID to show
}

// ShowTaskOutput contains the result of showing a task.
// Fields are ordered to minimize memory padding.
type ShowTaskOutput struct {
	Task        *domain.Task              // The requested task
	Completions []domain.CompletionRecord // Completion history, most recent first
	Today       domain.Date               // Day used for derived fields
	Active      bool                      // Whether the task is currently active
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	tasks       domain.TaskRepository
	completions domain.CompletionRepository
	clock       domain.Clock
	loc         *time.Location
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks domain.TaskRepository, completions domain.CompletionRepository, clock domain.Clock, loc *time.Location) *ShowTask {
	return &ShowTask{
		tasks:       tasks,
		completions: completions,
		clock:       clock,
		loc:         loc,
	}
}

// Execute retrieves a task and its completion history.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.GetTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	records, err := uc.completions.ListCompletions(task.ID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	today := domain.Today(uc.clock, uc.loc)
	return &ShowTaskOutput{
		Task:        task,
		Completions: records,
		Today:       today,
		Active:      task.IsCurrentlyActive(today),
	}, nil
}
