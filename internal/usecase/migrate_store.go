package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/runoshun/habit/internal/domain"
)

// MigrateStoreInput contains parameters for MigrateStore.
type MigrateStoreInput struct {
	// SkipCompletions migrates tasks without their completion history.
	SkipCompletions bool
}

// MigrateStoreOutput contains migration results.
type MigrateStoreOutput struct {
	Total       int // Tasks in the source store
	Migrated    int // Tasks written to the destination
	Skipped     int // Tasks already present and identical
	Completions int // Completion records written
}

// MigrateStore copies tasks and completion records between storage backends.
type MigrateStore struct {
	source domain.Store
	dest   domain.Store
	logger domain.Logger
}

// NewMigrateStore creates a new MigrateStore use case.
func NewMigrateStore(source, dest domain.Store, logger domain.Logger) *MigrateStore {
	return &MigrateStore{source: source, dest: dest, logger: logger}
}

// Execute migrates all tasks and their completions.
// Identical destination tasks are skipped; differing ones fail with
// ErrMigrationConflict. Completion records already present are kept.
func (uc *MigrateStore) Execute(ctx context.Context, in MigrateStoreInput) (*MigrateStoreOutput, error) {
	if uc.source == nil || uc.dest == nil {
		return nil, errors.New("source or destination store is nil")
	}
	if !uc.source.IsInitialized() {
		return nil, fmt.Errorf("source store: %w", domain.ErrNotInitialized)
	}

	if err := uc.dest.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize destination store: %w", err)
	}

	tasks, err := uc.source.List(domain.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("list source tasks: %w", err)
	}

	out := &MigrateStoreOutput{Total: len(tasks)}
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		existing, err := uc.dest.Get(task.ID)
		if err != nil {
			return nil, fmt.Errorf("check destination task %d: %w", task.ID, err)
		}
		switch {
		case existing == nil:
			if err := uc.dest.Save(task.Clone()); err != nil {
				return nil, fmt.Errorf("save destination task %d: %w", task.ID, err)
			}
			out.Migrated++
		case tasksEqual(task, existing):
			out.Skipped++
		default:
			return nil, fmt.Errorf("%w: task %d", domain.ErrMigrationConflict, task.ID)
		}

		if in.SkipCompletions {
			continue
		}
		n, err := uc.copyCompletions(task.ID)
		if err != nil {
			return nil, err
		}
		out.Completions += n
	}

	if uc.logger != nil {
		uc.logger.Info(0, "migrate", fmt.Sprintf("migrated %d of %d task(s), %d completion(s)", out.Migrated, out.Total, out.Completions))
	}
	return out, nil
}

func (uc *MigrateStore) copyCompletions(taskID int) (int, error) {
	records, err := uc.source.ListCompletions(taskID)
	if err != nil {
		return 0, fmt.Errorf("list source completions for %d: %w", taskID, err)
	}

	copied := 0
	for _, r := range records {
		err := uc.dest.AddCompletion(r)
		if errors.Is(err, domain.ErrAlreadyCompleted) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("save destination completion %s: %w", r.ID, err)
		}
		copied++
	}
	return copied, nil
}

// tasksEqual compares tasks ignoring time zone and monotonic clock differences
// introduced by the storage encodings.
func tasksEqual(a, b *domain.Task) bool {
	return reflect.DeepEqual(normalizeTask(a), normalizeTask(b))
}

func normalizeTask(t *domain.Task) *domain.Task {
	c := t.Clone()
	c.Created = c.Created.UTC().Round(0)
	c.Updated = c.Updated.UTC().Round(0)
	return c
}
