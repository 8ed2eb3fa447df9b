package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case MsgTasksLoaded:
		m.today = msg.Date
		m.setTasks(msg.Tasks)
		if m.mode == ModeStats {
			if task := m.SelectedTask(); task != nil {
				return m, m.loadStats(task.ID)
			}
			m.closeStats()
		}
		return m, nil

	case MsgTaskCompleted:
		m.status = fmt.Sprintf("Completed #%d for %s (value %d)", msg.Record.TaskID, msg.Record.Date, msg.Record.CompletedValue)
		return m, m.loadTasks()

	case MsgRolloverDone:
		out := msg.Output
		m.status = fmt.Sprintf("Rollover for %s: %d processed, %d already current, %d failed",
			out.Date, len(out.Results), out.Skipped, len(out.Failures))
		if len(out.Failures) > 0 {
			f := out.Failures[0]
			m.err = fmt.Errorf("task #%d: %w", f.TaskID, f.Err)
		}
		return m, m.loadTasks()

	case MsgTaskReactivated:
		if msg.AlreadyEnabled {
			m.status = fmt.Sprintf("Task #%d is already enabled", msg.TaskID)
			return m, nil
		}
		m.status = fmt.Sprintf("Reactivated #%d", msg.TaskID)
		return m, m.loadTasks()

	case MsgStatsLoaded:
		stats := msg.Statistics
		m.stats = &stats
		m.mode = ModeStats
		return m, nil

	case MsgError:
		m.err = msg.Err
		m.status = ""
		return m, nil
	}

	return m, nil
}

// handleKeyMsg dispatches key presses by mode.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Clear error on any key press
	if m.err != nil {
		m.err = nil
	}

	switch m.mode {
	case ModeHelp:
		return m.handleHelpMode(msg)
	case ModeNormal, ModeStats:
		return m.handleNormalMode(msg)
	}

	return m, nil
}

// handleNormalMode handles keys in normal and stats mode.
func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1)

	case key.Matches(msg, m.keys.Complete):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		return m, m.completeTask(task.ID)

	case key.Matches(msg, m.keys.Rollover):
		return m, m.runRollover()

	case key.Matches(msg, m.keys.Reactivate):
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		return m, m.reactivateTask(task.ID)

	case key.Matches(msg, m.keys.Stats):
		if m.mode == ModeStats {
			m.closeStats()
			return m, nil
		}
		task := m.SelectedTask()
		if task == nil {
			return m, nil
		}
		return m, m.loadStats(task.ID)

	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		return m, m.loadTasks()

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		m.help.ShowAll = true
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.mode == ModeStats {
			m.closeStats()
		}
		return m, nil
	}

	return m, nil
}

// handleHelpMode closes the help overlay on any dismiss key.
func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.help.ShowAll = false
	}
	return m, nil
}

// moveCursor moves the selection by delta, clamped to the list.
// In stats mode the panel follows the selection.
func (m *Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if len(m.tasks) == 0 {
		return m, nil
	}
	next := min(max(m.cursor+delta, 0), len(m.tasks)-1)
	if next == m.cursor {
		return m, nil
	}
	m.cursor = next
	if m.mode == ModeStats {
		return m, m.loadStats(m.tasks[next].ID)
	}
	return m, nil
}

func (m *Model) closeStats() {
	m.mode = ModeNormal
	m.stats = nil
}
