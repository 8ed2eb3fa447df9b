package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrOutOfRange         = errors.New("completion date is outside the task's date range")
	ErrAlreadyCompleted   = errors.New("task already completed for this date")
	ErrInvalidDateRange   = errors.New("end date must be on or after start date")
	ErrInvalidDate        = errors.New("invalid date (want YYYY-MM-DD)")
	ErrInvalidDailyTarget = errors.New("daily target must be at least 1")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidStrategy    = errors.New("invalid rollover strategy")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrTitleTooShort      = errors.New("title is too short")
	ErrTitleTooLong       = errors.New("title is too long")
	ErrDescriptionTooLong = errors.New("description is too long")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrNotInitialized     = errors.New("habit store not initialized (run 'habit init' first)")
	ErrConfigExists       = errors.New("config file already exists")
	ErrInvalidStore       = errors.New("unknown store backend")
	ErrMigrationConflict  = errors.New("destination already holds a different task with this ID")
	ErrNoLogs             = errors.New("no log file found")
)

// IsValidationError reports whether err is caused by bad caller input
// rather than a missing resource or an internal failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrOutOfRange,
		ErrAlreadyCompleted,
		ErrInvalidDateRange,
		ErrInvalidDate,
		ErrInvalidDailyTarget,
		ErrInvalidPriority,
		ErrInvalidStrategy,
		ErrEmptyTitle,
		ErrTitleTooShort,
		ErrTitleTooLong,
		ErrDescriptionTooLong,
		ErrNoFieldsToUpdate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
