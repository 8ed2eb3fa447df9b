package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/runoshun/habit/internal/domain"
)

// ListMode selects which tasks ListTasks returns and in what order.
type ListMode string

// List modes.
const (
	// ListAll returns every task, newest first.
	ListAll ListMode = "all"
	// ListByPriority returns enabled tasks not completed today, highest priority first.
	ListByPriority ListMode = "priority"
	// ListActive returns enabled tasks whose range covers the date and that
	// were not completed on it, highest priority first.
	ListActive ListMode = "active"
	// ListPriority returns enabled tasks of one priority not completed today,
	// earliest start first.
	ListPriority ListMode = "with-priority"
)

// ParseListMode converts a user-supplied mode name. Empty selects ListAll.
func ParseListMode(s string) (ListMode, error) {
	switch m := ListMode(s); m {
	case "":
		return ListAll, nil
	case ListAll, ListByPriority, ListActive, ListPriority:
		return m, nil
	}
	return "", fmt.Errorf("unknown list mode %q (want all, priority, active or with-priority)", s)
}

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	Mode     ListMode        // Listing mode (empty = ListAll)
	Priority domain.Priority // Required for ListPriority
	Date     domain.Date     // Day for ListActive (zero = today)
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks []*domain.Task // Tasks in display order
	Date  domain.Date    // Day the "not completed" filter used
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	tasks       domain.TaskRepository
	completions domain.CompletionRepository
	clock       domain.Clock
	loc         *time.Location
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository, completions domain.CompletionRepository, clock domain.Clock, loc *time.Location) *ListTasks {
	return &ListTasks{
		tasks:       tasks,
		completions: completions,
		clock:       clock,
		loc:         loc,
	}
}

// Execute lists tasks for the requested mode.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	today := domain.Today(uc.clock, uc.loc)

	switch in.Mode {
	case ListAll, "":
		tasks, err := uc.tasks.List(domain.TaskFilter{})
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		slices.SortFunc(tasks, func(a, b *domain.Task) int { return cmp.Compare(b.ID, a.ID) })
		return &ListTasksOutput{Tasks: tasks, Date: today}, nil

	case ListByPriority:
		tasks, err := uc.pending(domain.TaskFilter{EnabledOnly: true}, today, nil)
		if err != nil {
			return nil, err
		}
		slices.SortFunc(tasks, func(a, b *domain.Task) int {
			if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		})
		return &ListTasksOutput{Tasks: tasks, Date: today}, nil

	case ListActive:
		date := in.Date
		if date.IsZero() {
			date = today
		}
		tasks, err := uc.pending(domain.TaskFilter{EnabledOnly: true}, date, func(t *domain.Task) bool {
			return t.InRange(date)
		})
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(tasks, func(a, b *domain.Task) int {
			return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		})
		return &ListTasksOutput{Tasks: tasks, Date: date}, nil

	case ListPriority:
		if !in.Priority.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, in.Priority)
		}
		tasks, err := uc.pending(domain.TaskFilter{EnabledOnly: true, Priority: in.Priority}, today, nil)
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(tasks, func(a, b *domain.Task) int { return a.StartDate.Compare(b.StartDate) })
		return &ListTasksOutput{Tasks: tasks, Date: today}, nil
	}

	return nil, fmt.Errorf("unknown list mode %q", in.Mode)
}

// pending returns tasks matching filter and keep that have no completion on date.
func (uc *ListTasks) pending(filter domain.TaskFilter, date domain.Date, keep func(*domain.Task) bool) ([]*domain.Task, error) {
	tasks, err := uc.tasks.List(filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep != nil && !keep(t) {
			continue
		}
		done, err := uc.completions.HasCompletion(t.ID, date)
		if err != nil {
			return nil, fmt.Errorf("check completion for task #%d: %w", t.ID, err)
		}
		if !done {
			out = append(out, t)
		}
	}
	return out, nil
}
