// Package shared holds helpers used by several use cases.
package shared

import (
	"fmt"

	"github.com/runoshun/habit/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
func GetTask(repo domain.TaskRepository, taskID int) (*domain.Task, error) {
	task, err := repo.Get(taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// LockedTask acquires the task's lock and then loads it, so the returned copy
// is current for the whole read-modify-write. The caller must call unlock
// when err is nil.
func LockedTask(locker domain.TaskLocker, repo domain.TaskRepository, taskID int) (task *domain.Task, unlock func(), err error) {
	unlock, err = locker.LockTask(taskID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock task #%d: %w", taskID, err)
	}
	task, err = GetTask(repo, taskID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return task, unlock, nil
}
