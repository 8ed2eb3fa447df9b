// Package tui provides the terminal dashboard for habit.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal Mode = iota // Default navigation mode
	ModeStats              // Statistics panel for the selected task
	ModeHelp               // Help overlay mode
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeStats:
		return "stats"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}
