package domain

// CompletionLookup reports whether a task has a completion record for a date.
// It must answer consistently for the duration of one rollover pass.
type CompletionLookup func(Date) bool

// RolloverResult is the outcome of running the rollover engine for one task.
type RolloverResult struct {
	LastProcessedDate Date // Always the "today" the engine was run for (unless already current)
	AccumulatedValue  int  // New accumulated value
	MissedDays        int  // Days that applied OnMissedDay
	CompletedDays     int  // Days that applied OnCompletion
	SkippedDays       int  // Days before the start date
}

// Changed reports whether the rollover processed at least one elapsed day.
func (r RolloverResult) Changed() bool {
	return r.MissedDays+r.CompletedDays+r.SkippedDays > 0
}

// Rollover replays every unprocessed day from t.LastProcessedDate+1 through
// today. Days before the start date are skipped; days with a completion apply
// the strategy's completion rule and all other days its missed-day rule.
// The task itself is not modified; see Task.ApplyRollover.
//
// A task whose LastProcessedDate is on or after today is returned unchanged.
func (s RolloverStrategy) Rollover(t *Task, today Date, completed CompletionLookup) RolloverResult {
	res := RolloverResult{
		AccumulatedValue:  t.AccumulatedValue,
		LastProcessedDate: t.LastProcessedDate,
	}
	if !t.LastProcessedDate.Before(today) {
		return res
	}

	view := t.Clone()
	for d := t.LastProcessedDate.AddDays(1); !d.After(today); d = d.AddDays(1) {
		if d.Before(t.StartDate) {
			res.SkippedDays++
			continue
		}
		if completed(d) {
			view.AccumulatedValue = s.OnCompletion(view)
			res.CompletedDays++
		} else {
			view.AccumulatedValue = s.OnMissedDay(view)
			res.MissedDays++
		}
	}

	res.AccumulatedValue = view.AccumulatedValue
	res.LastProcessedDate = today
	return res
}

// ApplyRollover stores a rollover result on the task.
func (t *Task) ApplyRollover(r RolloverResult) {
	t.AccumulatedValue = r.AccumulatedValue
	t.LastProcessedDate = r.LastProcessedDate
}
