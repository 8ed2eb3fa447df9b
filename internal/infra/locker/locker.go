package locker

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/runoshun/habit/internal/domain"
)

var (
	_ domain.TaskLocker = (*FileLocker)(nil)
	_ domain.TaskLocker = (*KeyedMutex)(nil)
)

// FileLocker serializes work on a task across processes with one lock file
// per task under dir.
type FileLocker struct {
	dir string
}

// NewFileLocker creates a FileLocker keeping lock files in dir.
func NewFileLocker(dir string) *FileLocker {
	return &FileLocker{dir: dir}
}

// LockTask takes an exclusive flock on the task's lock file.
func (l *FileLocker) LockTask(taskID int) (func(), error) {
	path := filepath.Join(l.dir, fmt.Sprintf("task-%d.lock", taskID))
	return Flock(path, true)
}

// KeyedMutex serializes work on a task within one process.
// Entries are reference counted and dropped once unused.
type KeyedMutex struct {
	locks map[int]*keyedEntry
	mu    sync.Mutex
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int]*keyedEntry)}
}

// LockTask blocks until the task's mutex is held.
func (k *KeyedMutex) LockTask(taskID int) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[taskID]
	if !ok {
		e = &keyedEntry{}
		k.locks[taskID] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.locks, taskID)
			}
			k.mu.Unlock()
		})
	}, nil
}

// size returns the number of tracked entries.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
