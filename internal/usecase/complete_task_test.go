package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/testutil"
	"github.com/runoshun/habit/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompleteTask(store *testutil.MockStore, clock *testutil.MockClock, logger domain.Logger) *usecase.CompleteTask {
	return usecase.NewCompleteTask(
		store, store, testutil.NewMockLocker(), &testutil.MockIDGenerator{},
		domain.StrategyAccumulative, clock, time.UTC, logger,
	)
}

func TestCompleteTask_Execute_AfterRollover(t *testing.T) {
	// Setup
	store := testutil.NewMockStore()
	task := pushups(1)
	task.AccumulatedValue = 25
	task.LastProcessedDate = date("2024-01-04")
	store.AddTask(task)
	clock := testutil.NewMockClockOn("2024-01-04")
	logger := &testutil.MockLogger{}
	uc := newCompleteTask(store, clock, logger)

	// Execute
	out, err := uc.Execute(context.Background(), usecase.CompleteTaskInput{TaskID: 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, out.Task.AccumulatedValue)
	assert.False(t, out.Task.Enabled)
	assert.Equal(t, "rec-1", out.Record.ID)
	assert.Equal(t, date("2024-01-04"), out.Record.Date)
	assert.Equal(t, 5, out.Record.CompletedValue)
	assert.Equal(t, clock.NowTime, out.Record.Timestamp)

	saved := store.Tasks[1]
	assert.Equal(t, 5, saved.AccumulatedValue)
	assert.False(t, saved.Enabled)
	assert.Equal(t, date("2024-01-04"), saved.LastProcessedDate)
	require.Len(t, store.Completions[1], 1)
	assert.Equal(t, 5, store.Completions[1][0].CompletedValue)
	assert.NotEmpty(t, logger.ByLevel("INFO"))

	// A second completion of the same day is rejected and changes nothing.
	_, err = uc.Execute(context.Background(), usecase.CompleteTaskInput{TaskID: 1, Date: date("2024-01-04")})
	require.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.Len(t, store.Completions[1], 1)
}

func TestCompleteTask_Execute_PastDate(t *testing.T) {
	store := testutil.NewMockStore()
	task := pushups(1)
	task.AccumulatedValue = 25
	task.LastProcessedDate = date("2024-01-04")
	store.AddTask(task)
	uc := newCompleteTask(store, testutil.NewMockClockOn("2024-01-05"), nil)

	out, err := uc.Execute(context.Background(), usecase.CompleteTaskInput{TaskID: 1, Date: date("2024-01-02")})

	require.NoError(t, err)
	assert.Equal(t, 5, out.Task.AccumulatedValue)
	assert.Equal(t, date("2024-01-04"), out.Task.LastProcessedDate, "only a completion for today advances last processed")
}

func TestCompleteTask_Execute_Errors(t *testing.T) {
	tests := []struct {
		setup   func(s *testutil.MockStore)
		name    string
		errText string
		wantErr error
		in      usecase.CompleteTaskInput
	}{
		{
			name:    "task not found",
			in:      usecase.CompleteTaskInput{TaskID: 99},
			wantErr: domain.ErrTaskNotFound,
		},
		{
			name:    "before start",
			in:      usecase.CompleteTaskInput{TaskID: 1, Date: date("2023-12-31")},
			wantErr: domain.ErrOutOfRange,
		},
		{
			name:    "after end",
			in:      usecase.CompleteTaskInput{TaskID: 1, Date: date("2024-01-11")},
			wantErr: domain.ErrOutOfRange,
		},
		{
			name: "already completed",
			in:   usecase.CompleteTaskInput{TaskID: 1, Date: date("2024-01-03")},
			setup: func(s *testutil.MockStore) {
				_ = s.AddCompletion(domain.CompletionRecord{ID: "old", TaskID: 1, Date: date("2024-01-03")})
			},
			wantErr: domain.ErrAlreadyCompleted,
		},
		{
			name: "completion save fails",
			in:   usecase.CompleteTaskInput{TaskID: 1},
			setup: func(s *testutil.MockStore) {
				s.CompleteErr = errors.New("disk full")
			},
			errText: "save completion",
		},
		{
			name: "task save fails",
			in:   usecase.CompleteTaskInput{TaskID: 1},
			setup: func(s *testutil.MockStore) {
				s.SaveErr = errors.New("disk full")
			},
			errText: "save task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStore()
			store.AddTask(pushups(1))
			if tt.setup != nil {
				tt.setup(store)
			}
			uc := newCompleteTask(store, testutil.NewMockClockOn("2024-01-04"), nil)

			_, err := uc.Execute(context.Background(), tt.in)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errText != "" {
				assert.Contains(t, err.Error(), tt.errText)
			}
			assert.True(t, store.Tasks[1].Enabled, "stored task must stay enabled")
			assert.Equal(t, 5, store.Tasks[1].AccumulatedValue)
		})
	}
}

func TestCompleteTask_Execute_LocksTask(t *testing.T) {
	store := testutil.NewMockStore()
	store.AddTask(pushups(4))
	locker := testutil.NewMockLocker()
	uc := usecase.NewCompleteTask(store, store, locker, &testutil.MockIDGenerator{},
		domain.StrategyReset, testutil.NewMockClockOn("2024-01-04"), time.UTC, nil)

	_, err := uc.Execute(context.Background(), usecase.CompleteTaskInput{TaskID: 4})

	require.NoError(t, err)
	assert.Equal(t, []int{4}, locker.Locked)
}
