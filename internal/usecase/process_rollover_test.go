package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/testutil"
	"github.com/runoshun/habit/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessRollover(store *testutil.MockStore, strategy domain.RolloverStrategy, today string, logger domain.Logger) *usecase.ProcessRollover {
	return usecase.NewProcessRollover(
		store, store, testutil.NewMockLocker(), strategy, 4,
		testutil.NewMockClockOn(today), time.UTC, logger,
	)
}

func TestProcessRollover_Execute_Scenario(t *testing.T) {
	// Setup
	store := testutil.NewMockStore()
	store.AddTask(pushups(1))
	logger := &testutil.MockLogger{}
	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", logger)

	// Execute
	out, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, date("2024-01-04"), out.Date)
	require.Len(t, out.Results, 1)
	assert.Equal(t, 1, out.Results[0].TaskID)
	assert.Equal(t, 4, out.Results[0].Result.MissedDays)
	assert.Empty(t, out.Failures)

	saved := store.Tasks[1]
	assert.Equal(t, 25, saved.AccumulatedValue)
	assert.Equal(t, date("2024-01-04"), saved.LastProcessedDate)

	// Running again on the same day is a no-op.
	out, err = uc.Execute(context.Background(), usecase.ProcessRolloverInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Equal(t, 25, store.Tasks[1].AccumulatedValue)
}

func TestProcessRollover_Execute_UsesCompletionHistory(t *testing.T) {
	store := testutil.NewMockStore()
	store.AddTask(pushups(1))
	require.NoError(t, store.AddCompletion(domain.CompletionRecord{ID: "a", TaskID: 1, Date: date("2024-01-02")}))
	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", nil)

	_, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

	require.NoError(t, err)
	assert.Equal(t, 15, store.Tasks[1].AccumulatedValue)
}

func TestProcessRollover_Execute_ResetStrategy(t *testing.T) {
	store := testutil.NewMockStore()
	task := pushups(1)
	task.AccumulatedValue = 40
	store.AddTask(task)
	uc := newProcessRollover(store, domain.StrategyReset, "2024-01-04", nil)

	_, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

	require.NoError(t, err)
	assert.Equal(t, 5, store.Tasks[1].AccumulatedValue)
}

func TestProcessRollover_Execute_Eligibility(t *testing.T) {
	store := testutil.NewMockStore()

	eligible := pushups(1)
	store.AddTask(eligible)

	disabled := pushups(2)
	disabled.Enabled = false
	store.AddTask(disabled)

	expired := pushups(3)
	expired.EndDate = date("2024-01-03")
	store.AddTask(expired)

	current := pushups(4)
	current.LastProcessedDate = date("2024-01-04")
	store.AddTask(current)

	endsToday := pushups(5)
	endsToday.EndDate = date("2024-01-04")
	store.AddTask(endsToday)

	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", nil)

	out, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

	require.NoError(t, err)
	var ids []int
	for _, r := range out.Results {
		ids = append(ids, r.TaskID)
	}
	assert.Equal(t, []int{1, 5}, ids)
	assert.Equal(t, 5, store.Tasks[2].AccumulatedValue, "disabled task untouched")
	assert.Equal(t, date("2023-12-31"), store.Tasks[3].LastProcessedDate, "expired task untouched")
	assert.Equal(t, 5, store.Tasks[4].AccumulatedValue, "current task untouched")
}

func TestProcessRollover_Execute_ManyTasksConcurrently(t *testing.T) {
	store := testutil.NewMockStore()
	for id := 1; id <= 25; id++ {
		store.AddTask(pushups(id))
	}
	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", nil)

	out, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

	require.NoError(t, err)
	require.Len(t, out.Results, 25)
	for i, r := range out.Results {
		assert.Equal(t, i+1, r.TaskID, "results are ordered by ID")
		assert.Equal(t, 25, store.Tasks[r.TaskID].AccumulatedValue)
	}
}

func TestProcessRollover_Execute_FailureDoesNotStopBatch(t *testing.T) {
	store := testutil.NewMockStore()
	store.AddTask(pushups(1))
	store.AddTask(pushups(2))
	store.AddTask(pushups(3))
	store.SaveErrFor[2] = errors.New("disk full")
	logger := &testutil.MockLogger{}
	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", logger)

	out, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, 2, out.Failures[0].TaskID)
	assert.Contains(t, out.Failures[0].Err.Error(), "disk full")
	assert.Equal(t, 25, store.Tasks[1].AccumulatedValue)
	assert.Equal(t, 5, store.Tasks[2].AccumulatedValue)
	assert.Equal(t, 25, store.Tasks[3].AccumulatedValue)

	errs := logger.ByLevel("ERROR")
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].TaskID)
}

func TestProcessRollover_Execute_SkipsTaskChangedBeforeLock(t *testing.T) {
	tests := []struct {
		change func(*domain.Task)
		name   string
	}{
		{func(t *domain.Task) { t.Enabled = false }, "completed"},
		{func(t *domain.Task) { t.LastProcessedDate = date("2024-01-04") }, "processed elsewhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			store := testutil.NewMockStore()
			store.AddTask(pushups(1))
			store.AddTask(pushups(2))
			locker := testutil.NewMockLocker()
			locker.OnLock = func(taskID int) {
				if taskID != 1 {
					return
				}
				task, err := store.Get(1)
				if err != nil || task == nil {
					return
				}
				tt.change(task)
				store.AddTask(task)
			}
			uc := usecase.NewProcessRollover(
				store, store, locker, domain.StrategyAccumulative, 1,
				testutil.NewMockClockOn("2024-01-04"), time.UTC, nil,
			)

			// Execute
			out, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, 1, out.Skipped)
			require.Len(t, out.Results, 1)
			assert.Equal(t, 2, out.Results[0].TaskID)
			assert.Empty(t, out.Failures)
			assert.Equal(t, 5, store.Tasks[1].AccumulatedValue, "changed task untouched")
			assert.Equal(t, 25, store.Tasks[2].AccumulatedValue)
		})
	}
}

func TestProcessRollover_Execute_BatchDoesNotCountCurrentTasksAsSkipped(t *testing.T) {
	store := testutil.NewMockStore()
	current := pushups(1)
	current.LastProcessedDate = date("2024-01-04")
	store.AddTask(current)
	store.AddTask(pushups(2))
	locker := testutil.NewMockLocker()
	uc := usecase.NewProcessRollover(
		store, store, locker, domain.StrategyAccumulative, 1,
		testutil.NewMockClockOn("2024-01-04"), time.UTC, nil,
	)

	out, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

	require.NoError(t, err)
	assert.Zero(t, out.Skipped)
	require.Len(t, out.Results, 1)
	assert.Equal(t, []int{2}, locker.Locked, "current task is never locked")
}

func TestProcessRollover_Execute_SingleTask(t *testing.T) {
	store := testutil.NewMockStore()
	store.AddTask(pushups(1))
	store.AddTask(pushups(2))
	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", nil)

	out, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{TaskID: 2})

	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, 2, out.Results[0].TaskID)
	assert.Equal(t, 5, store.Tasks[1].AccumulatedValue)
	assert.Equal(t, 25, store.Tasks[2].AccumulatedValue)

	// Already current now.
	out, err = uc.Execute(context.Background(), usecase.ProcessRolloverInput{TaskID: 2})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.Equal(t, 1, out.Skipped)
}

func TestProcessRollover_Execute_SingleTaskErrors(t *testing.T) {
	store := testutil.NewMockStore()
	store.AddTask(pushups(1))
	store.SaveErr = errors.New("disk full")
	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", nil)

	_, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{TaskID: 7})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = uc.Execute(context.Background(), usecase.ProcessRolloverInput{TaskID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save task")
}

func TestProcessRollover_Execute_ListError(t *testing.T) {
	store := testutil.NewMockStore()
	store.ListErr = fmt.Errorf("read tasks.json: %w", errors.New("EOF"))
	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", nil)

	_, err := uc.Execute(context.Background(), usecase.ProcessRolloverInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list tasks")
}

func TestProcessRollover_Execute_CanceledContext(t *testing.T) {
	store := testutil.NewMockStore()
	store.AddTask(pushups(1))
	uc := newProcessRollover(store, domain.StrategyAccumulative, "2024-01-04", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx, usecase.ProcessRolloverInput{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, store.Tasks[1].AccumulatedValue)
}
