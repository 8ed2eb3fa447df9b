// Package domain contains core business entities and interfaces.
package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits for user-supplied text.
const (
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Task is a recurring daily habit with a numeric target.
// Fields are ordered to minimize memory padding.
type Task struct {
	Created           time.Time `json:"created" yaml:"created"`                             // Creation time
	Updated           time.Time `json:"updated" yaml:"updated"`                             // Last modification time
	Title             string    `json:"title" yaml:"title"`                                 // Title (required)
	Description       string    `json:"description,omitempty" yaml:"description,omitempty"` // Description (optional)
	Priority          Priority  `json:"priority" yaml:"priority"`                           // Display/sort priority
	StartDate         Date      `json:"startDate" yaml:"startDate"`                         // First day (inclusive)
	EndDate           Date      `json:"endDate" yaml:"endDate"`                             // Last day (inclusive)
	LastProcessedDate Date      `json:"lastProcessedDate" yaml:"lastProcessedDate"`         // Rollover applied through this day
	ID                int       `json:"-" yaml:"-"`                                         // Task ID (stored as key, not in value)
	DailyTargetValue  int       `json:"dailyTargetValue" yaml:"dailyTargetValue"`           // Baseline amount per day (>= 1)
	AccumulatedValue  int       `json:"accumulatedValue" yaml:"accumulatedValue"`           // Amount required today
	Enabled           bool      `json:"enabled" yaml:"enabled"`                             // Stored on/off switch
}

// NewTaskParams holds the caller-supplied fields of a new task.
type NewTaskParams struct {
	Title            string
	Description      string
	Priority         Priority
	StartDate        Date
	EndDate          Date
	DailyTargetValue int
}

// NewTask builds a validated task. The accumulated value starts at the daily
// target and the task is treated as processed through the day before today.
func NewTask(id int, p NewTaskParams, today Date, now time.Time) (*Task, error) {
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	t := &Task{
		ID:                id,
		Title:             strings.TrimSpace(p.Title),
		Description:       p.Description,
		Priority:          p.Priority,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		DailyTargetValue:  p.DailyTargetValue,
		AccumulatedValue:  p.DailyTargetValue,
		LastProcessedDate: today.AddDays(-1),
		Enabled:           true,
		Created:           now,
		Updated:           now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the task's invariants.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(t.Title) < MinTitleLength {
		return fmt.Errorf("%w (min %d characters)", ErrTitleTooShort, MinTitleLength)
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return fmt.Errorf("%w (max %d characters)", ErrTitleTooLong, MaxTitleLength)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w (max %d characters)", ErrDescriptionTooLong, MaxDescriptionLength)
	}
	if t.DailyTargetValue < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDailyTarget, t.DailyTargetValue)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	return ValidateDateRange(t.StartDate, t.EndDate)
}

// ValidateDateRange reports ErrInvalidDateRange when end is before start.
func ValidateDateRange(start, end Date) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidDateRange, end, start)
	}
	return nil
}

// InRange reports whether d falls within [StartDate, EndDate].
func (t *Task) InRange(d Date) bool {
	return !d.Before(t.StartDate) && !d.After(t.EndDate)
}

// IsCurrentlyActive reports whether the task is enabled and today is within its range.
func (t *Task) IsCurrentlyActive(today Date) bool {
	return t.Enabled && t.InRange(today)
}

// IsExpired reports whether the task's last day is before today.
func (t *Task) IsExpired(today Date) bool {
	return t.EndDate.Before(today)
}

// NeedsRollover reports whether batch processing should run the engine for the task.
func (t *Task) NeedsRollover(today Date) bool {
	return t.Enabled && t.LastProcessedDate.Before(today) && !t.IsExpired(today)
}

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}
