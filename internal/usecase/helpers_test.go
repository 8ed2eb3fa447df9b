package usecase_test

import (
	"time"

	"github.com/runoshun/habit/internal/domain"
)

func date(s string) domain.Date { return domain.MustParseDate(s) }

// pushups returns the reference task: target 5 over 2024-01-01..2024-01-10,
// processed through 2023-12-31.
func pushups(id int) *domain.Task {
	created := time.Date(2023, 12, 31, 9, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:                id,
		Title:             "Push-ups",
		Priority:          domain.PriorityMedium,
		DailyTargetValue:  5,
		AccumulatedValue:  5,
		StartDate:         date("2024-01-01"),
		EndDate:           date("2024-01-10"),
		LastProcessedDate: date("2023-12-31"),
		Enabled:           true,
		Created:           created,
		Updated:           created,
	}
}
