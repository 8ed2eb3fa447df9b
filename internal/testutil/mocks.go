// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/runoshun/habit/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// NewMockClockOn returns a clock fixed at noon UTC on the given day.
func NewMockClockOn(date string) *MockClock {
	return &MockClock{NowTime: domain.MustParseDate(date).Time().Add(12 * time.Hour)}
}

// MockStore is a test double for domain.Store.
// It is safe for concurrent use so batch rollover can run against it.
// Fields are ordered to minimize memory padding.
type MockStore struct {
	Tasks       map[int]*domain.Task
	Completions map[int][]domain.CompletionRecord
	SaveErr     error
	GetErr      error
	ListErr     error
	NextIDErr   error
	DeleteErr   error
	CompleteErr error
	SaveErrFor  map[int]error // Per-task Save failures
	mu          sync.Mutex
	NextIDN     int
	SaveCalls   int
	Initialized bool
}

// NewMockStore creates a new MockStore with initialized maps.
func NewMockStore() *MockStore {
	return &MockStore{
		Tasks:       make(map[int]*domain.Task),
		Completions: make(map[int][]domain.CompletionRecord),
		SaveErrFor:  make(map[int]error),
		NextIDN:     1,
		Initialized: true,
	}
}

// Ensure MockStore implements domain.Store interface.
var _ domain.Store = (*MockStore)(nil)

// AddTask stores a copy of task and bumps NextIDN past its ID.
func (m *MockStore) AddTask(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task.Clone()
	if task.ID >= m.NextIDN {
		m.NextIDN = task.ID + 1
	}
}

// Get retrieves a copy of the task by ID.
func (m *MockStore) Get(id int) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	task, ok := m.Tasks[id]
	if !ok {
		return nil, nil
	}
	return task.Clone(), nil
}

// List returns copies of tasks matching the filter, ordered by ID.
func (m *MockStore) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	tasks := make([]*domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		if filter.Matches(t) {
			tasks = append(tasks, t.Clone())
		}
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int { return a.ID - b.ID })
	return tasks, nil
}

// Save stores a copy of the task.
func (m *MockStore) Save(task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if err := m.SaveErrFor[task.ID]; err != nil {
		return err
	}
	m.Tasks[task.ID] = task.Clone()
	return nil
}

// Delete removes a task and its completions.
func (m *MockStore) Delete(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Tasks, id)
	delete(m.Completions, id)
	return nil
}

// NextID returns the next available task ID.
func (m *MockStore) NextID() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.NextIDErr != nil {
		return 0, m.NextIDErr
	}
	id := m.NextIDN
	m.NextIDN++
	return id, nil
}

// HasCompletion reports whether a record exists for the task and date.
func (m *MockStore) HasCompletion(taskID int, date domain.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Completions[taskID] {
		if r.Date == date {
			return true, nil
		}
	}
	return false, nil
}

// ListCompletions returns the task's records, most recent first.
func (m *MockStore) ListCompletions(taskID int) ([]domain.CompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.Completions[taskID])
	slices.SortFunc(out, func(a, b domain.CompletionRecord) int { return b.Date.Compare(a.Date) })
	return out, nil
}

// AddCompletion stores a record, rejecting duplicates.
func (m *MockStore) AddCompletion(record domain.CompletionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CompleteErr != nil {
		return m.CompleteErr
	}
	for _, r := range m.Completions[record.TaskID] {
		if r.Date == record.Date {
			return domain.ErrAlreadyCompleted
		}
	}
	m.Completions[record.TaskID] = append(m.Completions[record.TaskID], record)
	return nil
}

// Initialize marks the store initialized.
func (m *MockStore) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Initialized = true
	return nil
}

// IsInitialized returns the configured value.
func (m *MockStore) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Initialized
}

// MockStoreInitializer is a test double for domain.StoreInitializer.
type MockStoreInitializer struct {
	InitErr     error
	Initialized bool
	InitCalled  bool
}

// Initialize records the call and returns the configured error.
func (m *MockStoreInitializer) Initialize() error {
	m.InitCalled = true
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Initialized = true
	return nil
}

// IsInitialized returns the configured value.
func (m *MockStoreInitializer) IsInitialized() bool {
	return m.Initialized
}

// MockLocker is a test double for domain.TaskLocker backed by per-task mutexes.
type MockLocker struct {
	LockErr error
	OnLock  func(taskID int) // Called before the task's mutex is taken
	locks   map[int]*sync.Mutex
	Locked  []int // Task IDs in acquisition order
	mu      sync.Mutex
}

// NewMockLocker creates a new MockLocker.
func NewMockLocker() *MockLocker {
	return &MockLocker{locks: make(map[int]*sync.Mutex)}
}

// Ensure MockLocker implements domain.TaskLocker interface.
var _ domain.TaskLocker = (*MockLocker)(nil)

// LockTask acquires the task's mutex.
func (m *MockLocker) LockTask(taskID int) (func(), error) {
	m.mu.Lock()
	if m.LockErr != nil {
		m.mu.Unlock()
		return nil, m.LockErr
	}
	l, ok := m.locks[taskID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[taskID] = l
	}
	m.Locked = append(m.Locked, taskID)
	onLock := m.OnLock
	m.mu.Unlock()

	if onLock != nil {
		onLock(taskID)
	}
	l.Lock()
	return l.Unlock, nil
}

// MockIDGenerator returns sequential IDs "rec-1", "rec-2", ...
type MockIDGenerator struct {
	mu sync.Mutex
	n  int
}

// NewID returns the next sequential ID.
func (m *MockIDGenerator) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("rec-%d", m.n)
}

// LogEntry is a single call recorded by MockLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	TaskID   int
}

// MockLogger records log calls.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// Ensure MockLogger implements domain.Logger interface.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) record(level string, taskID int, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(taskID int, category, msg string) {
	m.record("INFO", taskID, category, msg)
}

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID int, category, msg string) {
	m.record("DEBUG", taskID, category, msg)
}

// Warn records a warn entry.
func (m *MockLogger) Warn(taskID int, category, msg string) {
	m.record("WARN", taskID, category, msg)
}

// Error records an error entry.
func (m *MockLogger) Error(taskID int, category, msg string) {
	m.record("ERROR", taskID, category, msg)
}

// ByLevel returns recorded entries at the given level.
func (m *MockLogger) ByLevel(level string) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.Entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
	GlobalErr    error
}

// NewMockConfigLoader creates a new MockConfigLoader with default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{
		Config: domain.NewDefaultConfig(),
	}
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadGlobal returns the configured config or error.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.GlobalErr != nil {
		return nil, m.GlobalErr
	}
	if m.GlobalConfig != nil {
		return m.GlobalConfig, nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	InitConfig       *domain.Config // Config passed to the last Init call
	RepoConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		RepoConfigInfo: domain.ConfigInfo{
			Path:   "/home/test/.local/share/habit/config.toml",
			Exists: false,
		},
		GlobalConfigInfo: domain.ConfigInfo{
			Path:   "/home/test/.config/habit/config.toml",
			Exists: false,
		},
	}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetRepoConfigInfo returns the configured repo config info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitRepoConfig records the call and returns configured error.
func (m *MockConfigManager) InitRepoConfig(cfg *domain.Config) error {
	m.InitRepoCalled = true
	m.InitConfig = cfg
	return m.InitRepoErr
}

// InitGlobalConfig records the call and returns configured error.
func (m *MockConfigManager) InitGlobalConfig(cfg *domain.Config) error {
	m.InitGlobalCalled = true
	m.InitConfig = cfg
	return m.InitGlobalErr
}
