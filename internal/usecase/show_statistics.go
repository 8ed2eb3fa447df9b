package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase/shared"
)

// ShowStatisticsInput contains the parameters for computing statistics.
type ShowStatisticsInput struct {
	TaskID int // Task ID
}

// ShowStatisticsOutput contains the computed statistics.
type ShowStatisticsOutput struct {
	Statistics domain.Statistics
}

// ShowStatistics is the use case for a task's completion statistics.
type ShowStatistics struct {
	tasks       domain.TaskRepository
	completions domain.CompletionRepository
	clock       domain.Clock
	loc         *time.Location
}

// NewShowStatistics creates a new ShowStatistics use case.
func NewShowStatistics(tasks domain.TaskRepository, completions domain.CompletionRepository, clock domain.Clock, loc *time.Location) *ShowStatistics {
	return &ShowStatistics{
		tasks:       tasks,
		completions: completions,
		clock:       clock,
		loc:         loc,
	}
}

// Execute computes statistics for the task as of today.
func (uc *ShowStatistics) Execute(_ context.Context, in ShowStatisticsInput) (*ShowStatisticsOutput, error) {
	task, err := shared.GetTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	records, err := uc.completions.ListCompletions(task.ID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}

	today := domain.Today(uc.clock, uc.loc)
	return &ShowStatisticsOutput{
		Statistics: domain.ComputeStatistics(task, records, today),
	}, nil
}
