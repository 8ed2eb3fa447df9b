package domain

import (
	"math"
	"slices"
)

// Statistics summarizes a task's completion history up to a given day.
// Fields are ordered to minimize memory padding.
type Statistics struct {
	FirstCompletion   *Date   `json:"firstCompletion,omitempty" yaml:"firstCompletion,omitempty"`
	LastCompletion    *Date   `json:"lastCompletion,omitempty" yaml:"lastCompletion,omitempty"`
	Title             string  `json:"title" yaml:"title"`
	CompletedDates    []Date  `json:"completedDates" yaml:"completedDates"` // Most recent first
	WindowStart       Date    `json:"windowStart" yaml:"windowStart"`
	WindowEnd         Date    `json:"windowEnd" yaml:"windowEnd"`
	CompletionRate    float64 `json:"completionRate" yaml:"completionRate"` // Percent, 2 decimals, within [0, 100]
	TaskID            int     `json:"taskId" yaml:"taskId"`
	TotalCompletions  int     `json:"totalCompletions" yaml:"totalCompletions"`
	TotalPossibleDays int     `json:"totalPossibleDays" yaml:"totalPossibleDays"`
	CurrentStreak     int     `json:"currentStreak" yaml:"currentStreak"`
}

// ComputeStatistics derives completion metrics for t from its records as of today.
//
// The window runs from the start date (or today, for tasks that have not
// started yet) through the earlier of the end date and today.
func ComputeStatistics(t *Task, records []CompletionRecord, today Date) Statistics {
	windowEnd := MinDate(t.EndDate, today)
	windowStart := t.StartDate
	if t.StartDate.After(today) {
		windowStart = today
	}

	possible := max(0, windowStart.DaysUntil(windowEnd)+1)

	dates := make([]Date, 0, len(records))
	for _, r := range records {
		dates = append(dates, r.Date)
	}
	slices.SortFunc(dates, func(a, b Date) int { return b.Compare(a) })

	stats := Statistics{
		TaskID:            t.ID,
		Title:             t.Title,
		WindowStart:       windowStart,
		WindowEnd:         windowEnd,
		TotalCompletions:  len(records),
		TotalPossibleDays: possible,
		CompletedDates:    dates,
		CompletionRate:    completionRate(len(records), possible),
		CurrentStreak:     currentStreak(dates, t.StartDate, windowEnd),
	}
	if len(dates) > 0 {
		last := dates[0]
		first := dates[len(dates)-1]
		stats.FirstCompletion = &first
		stats.LastCompletion = &last
	}
	return stats
}

func completionRate(completions, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	rate := float64(completions) / float64(possible) * 100
	rate = math.Round(rate*100) / 100
	return math.Min(100, math.Max(0, rate))
}

// currentStreak counts consecutive completed days ending at end. When end
// itself has no completion yet, counting starts from the day before, so an
// unfinished today does not break a running streak.
// dates must be sorted most recent first.
func currentStreak(dates []Date, start, end Date) int {
	done := make(map[Date]bool, len(dates))
	for _, d := range dates {
		done[d] = true
	}

	day := end
	if !done[day] {
		day = day.AddDays(-1)
	}
	streak := 0
	for !day.Before(start) && done[day] {
		streak++
		day = day.AddDays(-1)
	}
	return streak
}
