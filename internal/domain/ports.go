package domain

import (
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error

	// IsInitialized reports whether the store exists.
	IsInitialized() bool
}

// TaskRepository manages task persistence.
type TaskRepository interface {
	// Get retrieves a task by ID. Returns nil if not found.
	Get(id int) (*Task, error)

	// List retrieves tasks matching the filter, ordered by ID ascending.
	List(filter TaskFilter) ([]*Task, error)

	// Save creates or updates a task.
	Save(task *Task) error

	// Delete removes a task and all of its completion records.
	Delete(id int) error

	// NextID returns the next available task ID.
	NextID() (int, error)
}

// TaskFilter specifies criteria for listing tasks.
// Fields are ordered to minimize memory padding.
type TaskFilter struct {
	Priority    Priority // Empty = any priority
	EnabledOnly bool     // Only tasks with Enabled set
}

// Matches reports whether t satisfies the filter.
func (f TaskFilter) Matches(t *Task) bool {
	if f.EnabledOnly && !t.Enabled {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// CompletionRepository manages completion records.
type CompletionRepository interface {
	// HasCompletion reports whether the task has a record for the date.
	HasCompletion(taskID int, date Date) (bool, error)

	// ListCompletions returns the task's records, most recent date first.
	ListCompletions(taskID int) ([]CompletionRecord, error)

	// AddCompletion stores a new record. It fails with ErrAlreadyCompleted
	// when a record for the same task and date exists.
	AddCompletion(record CompletionRecord) error
}

// Store is a backend that persists both tasks and their completions.
type Store interface {
	TaskRepository
	CompletionRepository
	StoreInitializer
}

// TaskLocker serializes read-modify-write cycles on a single task.
// Rollover and completion of the same task must not interleave.
type TaskLocker interface {
	// LockTask blocks until the task's lock is held and returns its release function.
	LockTask(taskID int) (unlock func(), err error)
}

// IDGenerator produces unique completion record IDs.
type IDGenerator interface {
	NewID() string
}

// Logger writes operational log entries.
// A taskID of 0 logs to the global log only.
type Logger interface {
	Info(taskID int, category, msg string)
	Debug(taskID int, category, msg string)
	Warn(taskID int, category, msg string)
	Error(taskID int, category, msg string)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (data dir + global).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// GetRepoConfigInfo returns information about the data directory config file.
	GetRepoConfigInfo() ConfigInfo

	// InitRepoConfig creates the data directory config file rendered from cfg.
	InitRepoConfig(cfg *Config) error

	// InitGlobalConfig creates the global config file rendered from cfg.
	InitGlobalConfig(cfg *Config) error
}

// ConfigInfo describes a configuration file on disk.
type ConfigInfo struct {
	Path    string // File path
	Content string // File content (empty if missing)
	Exists  bool   // Whether the file exists
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns the calendar day of clock.Now() in loc.
// A nil loc uses the clock's own location.
func Today(clock Clock, loc *time.Location) Date {
	now := clock.Now()
	if loc != nil {
		now = now.In(loc)
	}
	return DateOf(now)
}
