// Package storetest holds behavior tests shared by every domain.Store backend.
package storetest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/runoshun/habit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, initialized store.
type Factory func(t *testing.T) domain.Store

func d(s string) domain.Date { return domain.MustParseDate(s) }

// NewTask returns a valid task for store tests.
func NewTask(id int, title string) *domain.Task {
	ts := time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)
	return &domain.Task{
		ID:                id,
		Title:             title,
		Description:       "stored by storetest",
		Priority:          domain.PriorityMedium,
		DailyTargetValue:  5,
		AccumulatedValue:  5,
		StartDate:         d("2024-01-01"),
		EndDate:           d("2024-01-10"),
		LastProcessedDate: d("2023-12-31"),
		Enabled:           true,
		Created:           ts,
		Updated:           ts,
	}
}

// Run exercises the domain.Store contract against a backend.
func Run(t *testing.T, newStore Factory) {
	t.Run("NextID increments from 1", func(t *testing.T) {
		s := newStore(t)
		for want := 1; want <= 3; want++ {
			id, err := s.NextID()
			require.NoError(t, err)
			assert.Equal(t, want, id)
		}
	})

	t.Run("NextID skips IDs already saved", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(NewTask(5, "imported")))

		id, err := s.NextID()
		require.NoError(t, err)
		assert.Equal(t, 6, id)
	})

	t.Run("Save and Get round trip", func(t *testing.T) {
		s := newStore(t)
		task := NewTask(1, "Push-ups")
		task.Priority = domain.PriorityHigh
		require.NoError(t, s.Save(task))

		got, err := s.Get(1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1, got.ID)
		assert.Equal(t, "Push-ups", got.Title)
		assert.Equal(t, "stored by storetest", got.Description)
		assert.Equal(t, domain.PriorityHigh, got.Priority)
		assert.Equal(t, 5, got.DailyTargetValue)
		assert.Equal(t, d("2024-01-01"), got.StartDate)
		assert.Equal(t, d("2024-01-10"), got.EndDate)
		assert.Equal(t, d("2023-12-31"), got.LastProcessedDate)
		assert.True(t, got.Enabled)
		assert.True(t, task.Created.Equal(got.Created))
	})

	t.Run("Get missing returns nil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Get(42)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Save updates", func(t *testing.T) {
		s := newStore(t)
		task := NewTask(1, "Push-ups")
		require.NoError(t, s.Save(task))

		task.AccumulatedValue = 25
		task.LastProcessedDate = d("2024-01-04")
		task.Enabled = false
		require.NoError(t, s.Save(task))

		got, err := s.Get(1)
		require.NoError(t, err)
		assert.Equal(t, 25, got.AccumulatedValue)
		assert.Equal(t, d("2024-01-04"), got.LastProcessedDate)
		assert.False(t, got.Enabled)
	})

	t.Run("List filters and orders by ID", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []int{3, 1, 2} {
			task := NewTask(id, "t")
			if id == 2 {
				task.Enabled = false
			}
			if id == 3 {
				task.Priority = domain.PriorityLow
			}
			require.NoError(t, s.Save(task))
		}

		all, err := s.List(domain.TaskFilter{})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, ids(all))

		enabled, err := s.List(domain.TaskFilter{EnabledOnly: true})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, ids(enabled))

		low, err := s.List(domain.TaskFilter{Priority: domain.PriorityLow})
		require.NoError(t, err)
		assert.Equal(t, []int{3}, ids(low))
	})

	t.Run("completions are unique per date and listed newest first", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(NewTask(1, "Push-ups")))

		for i, day := range []string{"2024-01-02", "2024-01-04", "2024-01-03"} {
			require.NoError(t, s.AddCompletion(domain.CompletionRecord{
				ID:             string(rune('a' + i)),
				TaskID:         1,
				Date:           d(day),
				CompletedValue: 5,
				Timestamp:      time.Date(2024, 1, 4, 20, 0, 0, 0, time.UTC),
			}))
		}

		err := s.AddCompletion(domain.CompletionRecord{ID: "dup", TaskID: 1, Date: d("2024-01-04")})
		assert.True(t, errors.Is(err, domain.ErrAlreadyCompleted), "got %v", err)

		has, err := s.HasCompletion(1, d("2024-01-03"))
		require.NoError(t, err)
		assert.True(t, has)
		has, err = s.HasCompletion(1, d("2024-01-05"))
		require.NoError(t, err)
		assert.False(t, has)

		records, err := s.ListCompletions(1)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, d("2024-01-04"), records[0].Date)
		assert.Equal(t, "b", records[0].ID)
		assert.Equal(t, 5, records[0].CompletedValue)
		assert.Equal(t, d("2024-01-02"), records[2].Date)
	})

	t.Run("completions of other tasks are separate", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(NewTask(1, "a")))
		require.NoError(t, s.Save(NewTask(2, "b")))
		require.NoError(t, s.AddCompletion(domain.CompletionRecord{ID: "x", TaskID: 1, Date: d("2024-01-02")}))
		require.NoError(t, s.AddCompletion(domain.CompletionRecord{ID: "y", TaskID: 2, Date: d("2024-01-02")}))

		records, err := s.ListCompletions(2)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "y", records[0].ID)
	})

	t.Run("Delete cascades to completions", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(NewTask(1, "a")))
		require.NoError(t, s.Save(NewTask(2, "b")))
		require.NoError(t, s.AddCompletion(domain.CompletionRecord{ID: "x", TaskID: 1, Date: d("2024-01-02")}))

		require.NoError(t, s.Delete(1))

		got, err := s.Get(1)
		require.NoError(t, err)
		assert.Nil(t, got)
		records, err := s.ListCompletions(1)
		require.NoError(t, err)
		assert.Empty(t, records)

		other, err := s.Get(2)
		require.NoError(t, err)
		assert.NotNil(t, other)
	})

	t.Run("concurrent completions of one date store a single record", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(NewTask(1, "a")))

		var wg sync.WaitGroup
		var mu sync.Mutex
		successes := 0
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.AddCompletion(domain.CompletionRecord{ID: string(rune('a' + i)), TaskID: 1, Date: d("2024-01-05")})
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		records, err := s.ListCompletions(1)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("Initialize is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(NewTask(1, "kept")))
		require.NoError(t, s.Initialize())
		assert.True(t, s.IsInitialized())

		got, err := s.Get(1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "kept", got.Title)
	})
}

func ids(tasks []*domain.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
