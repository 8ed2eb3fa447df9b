package domain

import (
	"fmt"
	"time"
)

// CompletionRecord is the immutable fact that a task was completed on a date.
// At most one record exists per (TaskID, Date).
// Fields are ordered to minimize memory padding.
type CompletionRecord struct {
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`           // When the completion was recorded
	ID             string    `json:"id" yaml:"id"`                         // Record ID (UUID)
	Date           Date      `json:"date" yaml:"date"`                     // The completed day
	TaskID         int       `json:"taskId" yaml:"taskId"`                 // Owning task
	CompletedValue int       `json:"completedValue" yaml:"completedValue"` // Accumulated value at completion
}

// CompleteParams describes a completion request for Task.Complete.
type CompleteParams struct {
	Now              time.Time // Record timestamp
	RecordID         string    // ID assigned to the new record
	Date             Date      // Day being completed
	Today            Date      // Processing day
	AlreadyCompleted bool      // Whether a record already exists for Date
}

// Complete applies a completion for p.Date to the task and returns the record
// to persist. On success the accumulated value is reset by the strategy, the
// task is disabled, and LastProcessedDate advances when p.Date is today.
//
// The task is left untouched on error.
func (t *Task) Complete(s RolloverStrategy, p CompleteParams) (CompletionRecord, error) {
	if !t.InRange(p.Date) {
		return CompletionRecord{}, fmt.Errorf("%w: %s is outside %s..%s", ErrOutOfRange, p.Date, t.StartDate, t.EndDate)
	}
	if p.AlreadyCompleted {
		return CompletionRecord{}, fmt.Errorf("%w: task #%d on %s", ErrAlreadyCompleted, t.ID, p.Date)
	}

	t.AccumulatedValue = s.OnCompletion(t)
	t.Enabled = false
	if p.Date == p.Today {
		t.LastProcessedDate = p.Today
	}
	t.Updated = p.Now

	return CompletionRecord{
		ID:             p.RecordID,
		TaskID:         t.ID,
		Date:           p.Date,
		CompletedValue: t.AccumulatedValue,
		Timestamp:      p.Now,
	}, nil
}
