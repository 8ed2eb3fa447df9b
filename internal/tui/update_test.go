package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/testutil"
	"github.com/runoshun/habit/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(id int, title string, p domain.Priority) *domain.Task {
	return &domain.Task{
		ID:                id,
		Title:             title,
		Priority:          p,
		StartDate:         domain.MustParseDate("2024-01-01"),
		EndDate:           domain.MustParseDate("2024-01-10"),
		LastProcessedDate: domain.MustParseDate("2024-01-03"),
		DailyTargetValue:  5,
		AccumulatedValue:  5,
		Enabled:           true,
	}
}

// newTestModel returns a model with tasks already loaded.
func newTestModel(t *testing.T, tasks ...*domain.Task) (*Model, *testutil.MockStore) {
	t.Helper()
	store := testutil.NewMockStore()
	for _, task := range tasks {
		store.AddTask(task)
	}
	c := app.NewWithDeps(app.Config{DataDir: t.TempDir()}, store, testutil.NewMockClockOn("2024-01-04"), nil)

	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(m.Init()())
	return m, store
}

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends a key and runs the resulting command chain until it settles.
func press(m *Model, k string) {
	_, cmd := m.Update(keyMsg(k))
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func TestUpdate_TasksLoaded_SortsActiveByPriority(t *testing.T) {
	// Setup
	disabled := newTestTask(1, "Stretch", domain.PriorityHigh)
	disabled.Enabled = false
	low := newTestTask(2, "Read", domain.PriorityLow)
	high := newTestTask(3, "Run", domain.PriorityHigh)

	// Execute
	m, _ := newTestModel(t, disabled, low, high)

	// Assert
	require.Len(t, m.tasks, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{m.tasks[0].ID, m.tasks[1].ID, m.tasks[2].ID})
	assert.Equal(t, domain.MustParseDate("2024-01-04"), m.today)
}

func TestUpdate_CursorMovement(t *testing.T) {
	m, _ := newTestModel(t,
		newTestTask(1, "A", domain.PriorityMedium),
		newTestTask(2, "B", domain.PriorityMedium),
	)

	press(m, "j")
	assert.Equal(t, 1, m.cursor)

	// Clamped at the end
	press(m, "j")
	assert.Equal(t, 1, m.cursor)

	press(m, "k")
	assert.Equal(t, 0, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.SelectedTask().ID)
}

func TestUpdate_CompleteSelectedTask(t *testing.T) {
	// Setup
	m, store := newTestModel(t, newTestTask(1, "Push-ups", domain.PriorityMedium))

	// Execute
	press(m, "c")

	// Assert
	require.NoError(t, m.err)
	require.Len(t, store.Completions[1], 1)
	assert.Equal(t, domain.MustParseDate("2024-01-04"), store.Completions[1][0].Date)
	assert.Contains(t, m.status, "Completed #1 for 2024-01-04")
}

func TestUpdate_CompleteTwiceShowsError(t *testing.T) {
	m, _ := newTestModel(t, newTestTask(1, "Push-ups", domain.PriorityMedium))

	press(m, "c")
	press(m, "c")

	require.Error(t, m.err)
	assert.ErrorIs(t, m.err, domain.ErrAlreadyCompleted)
	assert.Empty(t, m.status)
}

func TestUpdate_RolloverProcessesTasks(t *testing.T) {
	// Setup
	m, store := newTestModel(t, newTestTask(1, "Push-ups", domain.PriorityMedium))

	// Execute
	press(m, "r")

	// Assert
	assert.Contains(t, m.status, "Rollover for 2024-01-04: 1 processed")
	task := store.Tasks[1]
	assert.Equal(t, domain.MustParseDate("2024-01-04"), task.LastProcessedDate)
	assert.Equal(t, 10, task.AccumulatedValue) // one missed day under the accumulative strategy
	assert.Equal(t, 10, m.tasks[0].AccumulatedValue)
}

func TestUpdate_RolloverFailureShowsError(t *testing.T) {
	m, store := newTestModel(t, newTestTask(1, "Push-ups", domain.PriorityMedium))
	store.SaveErrFor[1] = errors.New("disk full")

	press(m, "r")

	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "task #1")
	assert.Contains(t, m.status, "1 failed")
}

func TestUpdate_Reactivate(t *testing.T) {
	task := newTestTask(1, "Push-ups", domain.PriorityMedium)
	task.Enabled = false
	m, store := newTestModel(t, task)

	press(m, "a")

	assert.True(t, store.Tasks[1].Enabled)
	assert.Equal(t, "Reactivated #1", m.status)

	press(m, "a")
	assert.Equal(t, "Task #1 is already enabled", m.status)
}

func TestUpdate_StatsToggle(t *testing.T) {
	// Setup
	m, store := newTestModel(t, newTestTask(1, "Push-ups", domain.PriorityMedium))
	store.Completions[1] = []domain.CompletionRecord{
		{TaskID: 1, Date: domain.MustParseDate("2024-01-02")},
		{TaskID: 1, Date: domain.MustParseDate("2024-01-03")},
	}

	// Execute
	press(m, "s")

	// Assert
	assert.Equal(t, ModeStats, m.mode)
	require.NotNil(t, m.stats)
	assert.Equal(t, 2, m.stats.TotalCompletions)
	assert.Equal(t, 4, m.stats.TotalPossibleDays)

	press(m, "s")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Nil(t, m.stats)
}

func TestUpdate_StatsFollowsSelection(t *testing.T) {
	m, _ := newTestModel(t,
		newTestTask(1, "A", domain.PriorityHigh),
		newTestTask(2, "B", domain.PriorityLow),
	)

	press(m, "s")
	require.NotNil(t, m.stats)
	assert.Equal(t, 1, m.stats.TaskID)

	press(m, "j")
	require.NotNil(t, m.stats)
	assert.Equal(t, 2, m.stats.TaskID)
}

func TestUpdate_HelpMode(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "?")
	assert.Equal(t, ModeHelp, m.mode)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
}

func TestUpdate_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyMsg("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_ActionsWithoutTasksAreNoops(t *testing.T) {
	m, _ := newTestModel(t)

	for _, k := range []string{"c", "a", "s", "j"} {
		_, cmd := m.Update(keyMsg(k))
		assert.Nil(t, cmd, k)
	}
	assert.Equal(t, ModeNormal, m.mode)
}

func TestUpdate_ErrorClearedOnKeyPress(t *testing.T) {
	m, _ := newTestModel(t, newTestTask(1, "A", domain.PriorityMedium))
	m.Update(MsgError{Err: errors.New("boom")})
	require.Error(t, m.err)

	m.Update(keyMsg("j"))

	assert.NoError(t, m.err)
}

func TestUpdate_ReloadKeepsSelection(t *testing.T) {
	m, _ := newTestModel(t,
		newTestTask(1, "A", domain.PriorityMedium),
		newTestTask(2, "B", domain.PriorityMedium),
	)
	press(m, "j")
	require.Equal(t, 2, m.SelectedTask().ID)

	press(m, "g")

	assert.Equal(t, 2, m.SelectedTask().ID)
}

func TestUpdate_RolloverMessageWithoutFailures(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(MsgRolloverDone{Output: &usecase.ProcessRolloverOutput{Date: domain.MustParseDate("2024-01-04"), Skipped: 2}})

	assert.NoError(t, m.err)
	assert.Equal(t, "Rollover for 2024-01-04: 0 processed, 2 already current, 0 failed", m.status)
}
