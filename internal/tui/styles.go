package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/habit/internal/domain"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Background lipgloss.Color

	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color

	// Priority colors
	High   lipgloss.Color
	Medium lipgloss.Color
	Low    lipgloss.Color
}{
	Primary:    lipgloss.Color("#6C5CE7"), // Purple
	Muted:      lipgloss.Color("#636E72"), // Gray
	Error:      lipgloss.Color("#D63031"), // Red
	Success:    lipgloss.Color("#00B894"), // Green
	Warning:    lipgloss.Color("#FDCB6E"), // Yellow
	Background: lipgloss.Color("#2D3436"), // Dark gray

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)

	High:   lipgloss.Color("#FF7675"), // Salmon
	Medium: lipgloss.Color("#74B9FF"), // Light blue
	Low:    lipgloss.Color("#636E72"), // Gray
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderText lipgloss.Style
	HeaderDate lipgloss.Style

	// Task list
	TaskList          lipgloss.Style
	TaskSelected      lipgloss.Style
	TaskID            lipgloss.Style
	TaskTitle         lipgloss.Style
	TaskTitleSelected lipgloss.Style
	TaskDue           lipgloss.Style
	TaskRange         lipgloss.Style
	TaskDisabled      lipgloss.Style

	// Priority badges
	PriorityHigh   lipgloss.Style
	PriorityMedium lipgloss.Style
	PriorityLow    lipgloss.Style

	// Stats panel
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	DetailLabel lipgloss.Style
	DetailValue lipgloss.Style

	// Messages
	StatusMsg lipgloss.Style
	ErrorMsg  lipgloss.Style
	Footer    lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		HeaderText: lipgloss.NewStyle().
			Bold(true),

		HeaderDate: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskList: lipgloss.NewStyle().
			MarginBottom(1),

		TaskSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.TitleSelected),

		TaskID: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(5),

		TaskTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TaskTitleSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		TaskDue: lipgloss.NewStyle().
			Foreground(Colors.Warning).
			Width(10),

		TaskRange: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TaskDisabled: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Strikethrough(true),

		PriorityHigh: lipgloss.NewStyle().
			Foreground(Colors.High).
			Bold(true).
			Width(7),

		PriorityMedium: lipgloss.NewStyle().
			Foreground(Colors.Medium).
			Width(7),

		PriorityLow: lipgloss.NewStyle().
			Foreground(Colors.Low).
			Width(7),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary).
			Padding(0, 1),

		PanelTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		DetailLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(18),

		DetailValue: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		StatusMsg: lipgloss.NewStyle().
			Foreground(Colors.Success),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),
	}
}

// PriorityStyle returns the badge style for a priority.
func (s Styles) PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return s.PriorityHigh
	case domain.PriorityMedium:
		return s.PriorityMedium
	default:
		return s.PriorityLow
	}
}
