package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/infra/storetest"
)

// testStore creates an in-memory store for testing and registers cleanup.
func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewMemory(context.Background())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	if err := store.Initialize(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	return store
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store { return testStore(t) })
}

func TestOpen_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "habit.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if store.IsInitialized() {
		t.Error("IsInitialized() = true before Initialize")
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	id, err := store.NextID()
	if err != nil {
		t.Fatalf("NextID() error = %v", err)
	}
	task := storetest.NewTask(id, "Meditate")
	if err := store.Save(task); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if !reopened.IsInitialized() {
		t.Error("IsInitialized() = false after reopen")
	}

	got, err := reopened.Get(id)
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if got.Title != "Meditate" {
		t.Errorf("Title = %q, want Meditate", got.Title)
	}
	next, err := reopened.NextID()
	if err != nil {
		t.Fatalf("NextID() error = %v", err)
	}
	if next != id+1 {
		t.Errorf("NextID() after reopen = %d, want %d", next, id+1)
	}
}

func TestStore_AddCompletionUnknownTask(t *testing.T) {
	store := testStore(t)

	err := store.AddCompletion(domain.CompletionRecord{ID: "x", TaskID: 9, Date: domain.MustParseDate("2024-01-01")})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("AddCompletion() error = %v, want ErrTaskNotFound", err)
	}
}

func TestStore_RejectsInvalidRange(t *testing.T) {
	store := testStore(t)
	task := storetest.NewTask(1, "bad")
	task.EndDate = domain.MustParseDate("2023-01-01")

	if err := store.Save(task); err == nil {
		t.Error("Save() accepted end date before start date")
	}
}
