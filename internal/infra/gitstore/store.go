// Package gitstore provides a Git plumbing-based implementation of domain.Store.
package gitstore

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/habit/internal/domain"
)

// Store implements domain.Store using Git plumbing (refs and blobs).
//
// Data structure:
//
//	refs/<namespace>/
//	  meta         → blob (nextTaskID)
//	  initialized  → blob (marker)
//	  tasks/
//	    <id>       → blob (task YAML)
//	  completions/
//	    <id>       → blob (completion records YAML)
type Store struct {
	repo      *git.Repository
	namespace string // e.g., "habit"
	mu        sync.RWMutex
}

// Ensure Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// meta contains store metadata.
type meta struct {
	NextTaskID int `yaml:"nextTaskID"`
}

// completionsData holds the completion records of a task.
type completionsData struct {
	Completions []domain.CompletionRecord `yaml:"completions"`
}

// Open opens the repository at path, creating a bare repository when none exists.
func Open(path, namespace string) (*Store, error) {
	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(path, true)
		if err != nil {
			return nil, fmt.Errorf("init git repository: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	return NewWithRepo(repo, namespace), nil
}

// NewWithRepo creates a new Store with an existing repository instance.
func NewWithRepo(repo *git.Repository, namespace string) *Store {
	if namespace == "" {
		namespace = domain.DefaultGitNamespace
	}
	return &Store{
		repo:      repo,
		namespace: namespace,
	}
}

// refPrefix returns the ref prefix for this namespace.
func (s *Store) refPrefix() string {
	return "refs/" + s.namespace + "/"
}

func (s *Store) taskRef(id int) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "tasks/" + strconv.Itoa(id))
}

func (s *Store) completionsRef(id int) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "completions/" + strconv.Itoa(id))
}

func (s *Store) metaRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "meta")
}

func (s *Store) initializedRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "initialized")
}

// Get retrieves a task by ID.
func (s *Store) Get(id int) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(id)
}

func (s *Store) getLocked(id int) (*domain.Task, error) {
	ref, err := s.repo.Reference(s.taskRef(id), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task ref: %w", err)
	}
	return s.decodeTask(id, ref.Hash())
}

func (s *Store) decodeTask(id int, hash plumbing.Hash) (*domain.Task, error) {
	data, err := s.readBlob(hash)
	if err != nil {
		return nil, fmt.Errorf("read task: %w", err)
	}

	var task domain.Task
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("decode task #%d: %w", id, err)
	}
	task.ID = id
	return &task, nil
}

// List retrieves tasks matching the filter, ordered by ID.
func (s *Store) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []*domain.Task
	err := s.forEachRef("tasks/", func(id int, ref *plumbing.Reference) error {
		task, err := s.decodeTask(id, ref.Hash())
		if err != nil {
			return err
		}
		if filter.Matches(task) {
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		return a.ID - b.ID
	})
	return tasks, nil
}

// forEachRef calls fn for every ref under refs/<namespace>/<kind> whose
// last component is a numeric ID.
func (s *Store) forEachRef(kind string, fn func(id int, ref *plumbing.Reference) error) error {
	prefix := s.refPrefix() + kind

	refs, err := s.repo.References()
	if err != nil {
		return fmt.Errorf("list refs: %w", err)
	}
	defer refs.Close()

	return refs.ForEach(func(ref *plumbing.Reference) error {
		idStr, ok := strings.CutPrefix(ref.Name().String(), prefix)
		if !ok {
			return nil
		}
		id, parseErr := strconv.Atoi(idStr)
		if parseErr != nil {
			return nil // Skip invalid refs
		}
		return fn(id, ref)
	})
}

// Save creates or updates a task. NextID is moved past the saved ID.
func (s *Store) Save(task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := s.setBlobRef(s.taskRef(task.ID), data); err != nil {
		return err
	}

	m, err := s.loadMeta()
	if err != nil {
		return err
	}
	if task.ID >= m.NextTaskID {
		m.NextTaskID = task.ID + 1
		return s.saveMeta(m)
	}
	return nil
}

// Delete removes a task and its completion records.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []plumbing.ReferenceName{s.taskRef(id), s.completionsRef(id)} {
		if err := s.repo.Storer.RemoveReference(name); err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// NextID returns the next available task ID.
func (s *Store) NextID() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadMeta()
	if err != nil {
		return 0, err
	}

	id := m.NextTaskID
	m.NextTaskID++

	if err := s.saveMeta(m); err != nil {
		return 0, err
	}
	return id, nil
}

// HasCompletion reports whether the task has a record for date.
func (s *Store) HasCompletion(taskID int, date domain.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.completionsLocked(taskID)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(records, func(r domain.CompletionRecord) bool {
		return r.Date == date
	}), nil
}

// ListCompletions returns the task's records, most recent date first.
func (s *Store) ListCompletions(taskID int) ([]domain.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.completionsLocked(taskID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(records, func(a, b domain.CompletionRecord) int {
		return b.Date.Compare(a.Date)
	})
	return records, nil
}

// AddCompletion appends a record to the task's completion blob.
func (s *Store) AddCompletion(record domain.CompletionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.getLocked(record.TaskID)
	if err != nil {
		return err
	}
	if task == nil {
		return domain.ErrTaskNotFound
	}

	records, err := s.completionsLocked(record.TaskID)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Date == record.Date {
			return fmt.Errorf("%w: task #%d on %s", domain.ErrAlreadyCompleted, record.TaskID, record.Date)
		}
	}
	records = append(records, record)

	data, err := yaml.Marshal(&completionsData{Completions: records})
	if err != nil {
		return fmt.Errorf("marshal completions: %w", err)
	}
	return s.setBlobRef(s.completionsRef(record.TaskID), data)
}

// completionsLocked loads completions without locking (caller must hold lock).
func (s *Store) completionsLocked(taskID int) ([]domain.CompletionRecord, error) {
	ref, err := s.repo.Reference(s.completionsRef(taskID), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get completions ref: %w", err)
	}

	raw, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read completions: %w", err)
	}

	var data completionsData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode completions: %w", err)
	}
	return data.Completions, nil
}

// loadMeta loads metadata from the meta ref.
// If the meta ref doesn't exist, it calculates NextTaskID from existing tasks.
func (s *Store) loadMeta() (*meta, error) {
	ref, err := s.repo.Reference(s.metaRef(), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return &meta{NextTaskID: s.calculateNextTaskID()}, nil
		}
		return nil, fmt.Errorf("get meta ref: %w", err)
	}

	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}

	var m meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &m, nil
}

// calculateNextTaskID returns one past the highest task ID, or 1.
func (s *Store) calculateNextTaskID() int {
	maxID := 0
	_ = s.forEachRef("tasks/", func(id int, _ *plumbing.Reference) error {
		maxID = max(maxID, id)
		return nil
	})
	return maxID + 1
}

func (s *Store) saveMeta(m *meta) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	return s.setBlobRef(s.metaRef(), data)
}

// setBlobRef writes data as a blob and points name at it.
func (s *Store) setBlobRef(name plumbing.ReferenceName, data []byte) error {
	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)); err != nil {
		return fmt.Errorf("set ref %s: %w", name, err)
	}
	return nil
}

// writeBlob writes data to a blob and returns the hash.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}

	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

// readBlob reads a blob's content.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}

// Initialize creates the initialized marker and metadata.
// If NextTaskID is behind the highest existing task ID it is repaired,
// even when the store is already initialized.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.loadMeta()
	if err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	if minNext := s.calculateNextTaskID(); m.NextTaskID < minNext {
		m.NextTaskID = minNext
	}
	if err := s.saveMeta(m); err != nil {
		return err
	}

	_, err = s.repo.Reference(s.initializedRef(), true)
	if err == nil {
		return nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("check initialized ref: %w", err)
	}
	return s.setBlobRef(s.initializedRef(), []byte("initialized"))
}

// IsInitialized checks if the store has been initialized.
func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.repo.Reference(s.initializedRef(), true)
	return err == nil
}
