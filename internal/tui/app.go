package tui

import (
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase"
)

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	err       error
	stats     *domain.Statistics

	// State
	tasks  []*domain.Task
	status string // Result of the last action

	// Components
	keys   KeyMap
	styles Styles
	help   help.Model

	today domain.Date

	// Numeric state (smaller types last)
	mode   Mode
	cursor int
	width  int
	height int
}

// New creates a new TUI Model with the given container.
func New(c *app.Container) *Model {
	return &Model{
		container: c,
		mode:      ModeNormal,
		keys:      DefaultKeyMap(),
		styles:    DefaultStyles(),
		help:      help.New(),
	}
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return m.loadTasks()
}

// loadTasks returns a command that loads every task from the store.
func (m *Model) loadTasks() tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ListTasksUseCase().Execute(context.Background(), usecase.ListTasksInput{Mode: usecase.ListAll})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTasksLoaded{Tasks: out.Tasks, Date: out.Date}
	}
}

// completeTask returns a command that completes the task for today.
func (m *Model) completeTask(taskID int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.CompleteTaskUseCase().Execute(context.Background(), usecase.CompleteTaskInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskCompleted{Record: out.Record}
	}
}

// runRollover returns a command that processes every eligible task.
func (m *Model) runRollover() tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ProcessRolloverUseCase().Execute(context.Background(), usecase.ProcessRolloverInput{})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgRolloverDone{Output: out}
	}
}

// reactivateTask returns a command that re-enables the task.
func (m *Model) reactivateTask(taskID int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ReactivateTaskUseCase().Execute(context.Background(), usecase.ReactivateTaskInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskReactivated{TaskID: taskID, AlreadyEnabled: out.AlreadyEnabled}
	}
}

// loadStats returns a command that computes statistics for the task.
func (m *Model) loadStats(taskID int) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ShowStatisticsUseCase().Execute(context.Background(), usecase.ShowStatisticsInput{TaskID: taskID})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgStatsLoaded{Statistics: out.Statistics}
	}
}

// SelectedTask returns the currently selected task, or nil if none.
func (m *Model) SelectedTask() *domain.Task {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return nil
	}
	return m.tasks[m.cursor]
}

// setTasks replaces the task list, keeping the cursor on the same task ID.
func (m *Model) setTasks(tasks []*domain.Task) {
	var selectedID int
	if task := m.SelectedTask(); task != nil {
		selectedID = task.ID
	}

	m.tasks = sortTasks(tasks, m.today)

	m.cursor = 0
	for i, t := range m.tasks {
		if t.ID == selectedID {
			m.cursor = i
			break
		}
	}
}

// sortTasks orders tasks active first, then by priority, then by ID.
func sortTasks(tasks []*domain.Task, today domain.Date) []*domain.Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b *domain.Task) int {
		if ga, gb := displayGroup(a, today), displayGroup(b, today); ga != gb {
			return ga - gb
		}
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return rb - ra
		}
		return a.ID - b.ID
	})
	return sorted
}

// displayGroup ranks active tasks before upcoming, expired and disabled ones.
func displayGroup(t *domain.Task, today domain.Date) int {
	switch {
	case !t.Enabled:
		return 3
	case t.IsExpired(today):
		return 2
	case today.Before(t.StartDate):
		return 1
	default:
		return 0
	}
}
