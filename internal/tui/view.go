package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/runoshun/habit/internal/domain"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeNormal, ModeStats:
		content = m.viewMain()
	}

	return m.styles.App.Render(content)
}

// viewMain renders the task list with the optional statistics panel.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.styles.ErrorMsg.Render("Error: "+m.err.Error()) + "\n\n")
	} else if m.status != "" {
		b.WriteString(m.styles.StatusMsg.Render(m.status) + "\n\n")
	}

	b.WriteString(m.viewTaskList())

	if m.mode == ModeStats && m.stats != nil {
		b.WriteString("\n")
		b.WriteString(m.viewStats())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// viewHeader renders the title with today's date and the task count.
func (m *Model) viewHeader() string {
	title := m.styles.HeaderText.Render("Habits")

	active := 0
	for _, t := range m.tasks {
		if t.IsCurrentlyActive(m.today) {
			active++
		}
	}
	right := m.styles.HeaderDate.Render(fmt.Sprintf("%s · %d active of %d", m.today, active, len(m.tasks)))

	headerWidth := max(m.width-6, 40)
	spacing := max(headerWidth-lipgloss.Width(title)-lipgloss.Width(right), 1)

	return m.styles.Header.Render(title + strings.Repeat(" ", spacing) + right)
}

// viewTaskList renders one row per task.
func (m *Model) viewTaskList() string {
	if len(m.tasks) == 0 {
		return m.viewEmptyState()
	}

	var b strings.Builder
	for i, task := range m.tasks {
		b.WriteString(m.renderTaskItem(task, i == m.cursor))
		b.WriteString("\n")
	}
	return m.styles.TaskList.Render(b.String())
}

// viewEmptyState renders a hint when there are no tasks.
func (m *Model) viewEmptyState() string {
	return m.styles.Footer.Render("\n  No tasks yet\n\n  Create one with: habit new --title \"Push-ups\" --target 20 --days 30\n")
}

// renderTaskItem renders a single row.
func (m *Model) renderTaskItem(task *domain.Task, selected bool) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	id := m.styles.TaskID.Render(fmt.Sprintf("#%d", task.ID))
	priority := m.styles.PriorityStyle(task.Priority).Render(task.Priority.Display())
	due := m.styles.TaskDue.Render(fmt.Sprintf("%d/%d", task.AccumulatedValue, task.DailyTargetValue))
	dateRange := m.styles.TaskRange.Render(fmt.Sprintf("%s..%s", task.StartDate, task.EndDate))

	prefixWidth := 2 + 5 + 7 + 10 + 24
	maxTitle := max(m.width-6-prefixWidth, 10)
	title := task.Title
	if runewidth.StringWidth(title) > maxTitle {
		title = runewidth.Truncate(title, maxTitle, "...")
	}

	var titlePart string
	switch {
	case !task.Enabled:
		titlePart = m.styles.TaskDisabled.Render(title)
	case selected:
		titlePart = m.styles.TaskTitleSelected.Render(title)
	default:
		titlePart = m.styles.TaskTitle.Render(title)
	}
	if label := stateLabel(task, m.today); label != "" {
		titlePart += m.styles.TaskRange.Render(" (" + label + ")")
	}

	if selected {
		indicator = m.styles.TaskSelected.Render(indicator)
	}
	return indicator + id + priority + due + dateRange + "  " + titlePart
}

// stateLabel annotates tasks that are not currently active.
func stateLabel(task *domain.Task, today domain.Date) string {
	switch displayGroup(task, today) {
	case 1:
		return "upcoming"
	case 2:
		return "expired"
	case 3:
		return "disabled"
	default:
		return ""
	}
}

// viewStats renders the statistics panel for the selected task.
func (m *Model) viewStats() string {
	s := m.stats

	row := func(label, value string) string {
		return m.styles.DetailLabel.Render(label) + m.styles.DetailValue.Render(value)
	}

	lines := []string{
		m.styles.PanelTitle.Render(fmt.Sprintf("#%d %s", s.TaskID, s.Title)),
		row("Window", fmt.Sprintf("%s .. %s", s.WindowStart, s.WindowEnd)),
		row("Completions", fmt.Sprintf("%d / %d", s.TotalCompletions, s.TotalPossibleDays)),
		row("Completion rate", fmt.Sprintf("%.2f%%", s.CompletionRate)),
		row("Current streak", fmt.Sprintf("%d", s.CurrentStreak)),
	}
	if s.LastCompletion != nil {
		lines = append(lines, row("Last completion", s.LastCompletion.String()))
	}

	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}

// viewHelp renders the full key reference.
func (m *Model) viewHelp() string {
	title := m.styles.HeaderText.Render("KEYBOARD SHORTCUTS")
	return title + "\n\n" + m.help.View(m.keys) + "\n\n" + m.styles.Footer.Render("press ? or esc to close")
}
