package jsonstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/infra/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), "tasks.json"))
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return store
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store { return newTestStore(t) })
}

func TestStore_Initialize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	store := New(path)

	if store.IsInitialized() {
		t.Fatal("IsInitialized() = true before Initialize")
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("store file not created: %v", err)
	}
	if !store.IsInitialized() {
		t.Error("IsInitialized() = false after Initialize")
	}
}

func TestStore_NotInitialized(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "tasks.json"))

	if _, err := store.Get(1); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("Get() error = %v, want ErrNotInitialized", err)
	}
	if err := store.Save(storetest.NewTask(1, "x")); !errors.Is(err, domain.ErrNotInitialized) {
		t.Errorf("Save() error = %v, want ErrNotInitialized", err)
	}
}

func TestStore_FileLayout(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(storetest.NewTask(7, "Stretch")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{`"7": {`, `"startDate": "2024-01-01"`, `"lastProcessedDate": "2023-12-31"`, `"nextTaskID": 8`} {
		if !strings.Contains(string(content), want) {
			t.Errorf("store file missing %s:\n%s", want, content)
		}
	}
	if _, err := os.Stat(store.path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestStore_AddCompletionUnknownTask(t *testing.T) {
	store := newTestStore(t)

	err := store.AddCompletion(domain.CompletionRecord{ID: "x", TaskID: 9, Date: domain.MustParseDate("2024-01-01")})
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("AddCompletion() error = %v, want ErrTaskNotFound", err)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := store.List(domain.TaskFilter{})
	if err == nil || !strings.Contains(err.Error(), "parse store file") {
		t.Errorf("List() error = %v, want parse error", err)
	}
}
