// Package jsonstore provides a JSON file-based implementation of domain.Store.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/infra/locker"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks       map[string]*taskData                 `json:"tasks"`
	Completions map[string][]domain.CompletionRecord `json:"completions"`
	Meta        meta                                 `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	NextTaskID int `json:"nextTaskID"`
}

// taskData is the JSON representation of a task (without ID, which is the map key).
type taskData = domain.Task

// Store implements domain.Store using a single JSON file guarded by flock.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file must be created with Initialize before use.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Ensure Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// Get retrieves a task by ID.
func (s *Store) Get(id int) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(func(data *storeData) error {
		if t, ok := data.Tasks[strconv.Itoa(id)]; ok {
			task = t
			task.ID = id
		}
		return nil
	})
	return task, err
}

// List retrieves tasks matching the filter, ordered by ID.
func (s *Store) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(func(data *storeData) error {
		for key, t := range data.Tasks {
			id, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("invalid task key %q: %w", key, err)
			}
			t.ID = id
			if filter.Matches(t) {
				tasks = append(tasks, t)
			}
		}
		return nil
	})

	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		return a.ID - b.ID
	})

	return tasks, err
}

// Save creates or updates a task. NextID is moved past the saved ID.
func (s *Store) Save(task *domain.Task) error {
	return s.withLockWrite(func(data *storeData) error {
		data.Tasks[strconv.Itoa(task.ID)] = task
		if task.ID >= data.Meta.NextTaskID {
			data.Meta.NextTaskID = task.ID + 1
		}
		return nil
	})
}

// Delete removes a task and its completion records.
func (s *Store) Delete(id int) error {
	return s.withLockWrite(func(data *storeData) error {
		key := strconv.Itoa(id)
		delete(data.Tasks, key)
		delete(data.Completions, key)
		return nil
	})
}

// NextID returns the next available task ID.
func (s *Store) NextID() (int, error) {
	var id int
	err := s.withLockWrite(func(data *storeData) error {
		id = data.Meta.NextTaskID
		data.Meta.NextTaskID++
		return nil
	})
	return id, err
}

// HasCompletion reports whether the task has a record for date.
func (s *Store) HasCompletion(taskID int, date domain.Date) (bool, error) {
	var found bool
	err := s.withLock(func(data *storeData) error {
		found = hasDate(data.Completions[strconv.Itoa(taskID)], date)
		return nil
	})
	return found, err
}

// ListCompletions returns the task's records, most recent date first.
func (s *Store) ListCompletions(taskID int) ([]domain.CompletionRecord, error) {
	var records []domain.CompletionRecord
	err := s.withLock(func(data *storeData) error {
		records = slices.Clone(data.Completions[strconv.Itoa(taskID)])
		return nil
	})
	slices.SortFunc(records, func(a, b domain.CompletionRecord) int {
		return b.Date.Compare(a.Date)
	})
	return records, err
}

// AddCompletion stores a record. The (task, date) uniqueness check runs
// under the same exclusive lock as the write.
func (s *Store) AddCompletion(record domain.CompletionRecord) error {
	return s.withLockWrite(func(data *storeData) error {
		key := strconv.Itoa(record.TaskID)
		if _, ok := data.Tasks[key]; !ok {
			return domain.ErrTaskNotFound
		}
		if hasDate(data.Completions[key], record.Date) {
			return fmt.Errorf("%w: task #%d on %s", domain.ErrAlreadyCompleted, record.TaskID, record.Date)
		}
		data.Completions[key] = append(data.Completions[key], record)
		return nil
	})
}

func hasDate(records []domain.CompletionRecord, date domain.Date) bool {
	return slices.ContainsFunc(records, func(r domain.CompletionRecord) bool {
		return r.Date == date
	})
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	release, err := locker.Flock(s.lockPath, true)
	if err != nil {
		return err
	}
	defer release()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	data := &storeData{
		Meta:        meta{NextTaskID: 1},
		Tasks:       make(map[string]*taskData),
		Completions: make(map[string][]domain.CompletionRecord),
	}
	return s.write(data)
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	release, err := locker.Flock(s.lockPath, false)
	if err != nil {
		return err
	}
	defer release()

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	release, err := locker.Flock(s.lockPath, true)
	if err != nil {
		return err
	}
	defer release()

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	if data.Tasks == nil {
		data.Tasks = make(map[string]*taskData)
	}
	if data.Completions == nil {
		data.Completions = make(map[string][]domain.CompletionRecord)
	}
	if data.Meta.NextTaskID < 1 {
		data.Meta.NextTaskID = 1
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
