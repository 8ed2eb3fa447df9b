package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the TUI.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Actions
	Complete   key.Binding // Complete selected task for today
	Rollover   key.Binding // Run rollover for every task
	Reactivate key.Binding // Re-enable selected task

	// View
	Stats   key.Binding // Toggle statistics panel
	Refresh key.Binding // Reload tasks
	Help    key.Binding // Show help

	// General
	Quit   key.Binding // Quit application
	Escape key.Binding // Close panel
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete today"),
		),
		Rollover: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rollover"),
		),
		Reactivate: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "reactivate"),
		),
		Stats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stats"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}
}

// ShortHelp returns keybindings to show in the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Complete, k.Rollover, k.Stats, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},                         // Navigation
		{k.Complete, k.Rollover, k.Reactivate}, // Actions
		{k.Stats, k.Refresh, k.Help, k.Quit},   // View & general
	}
}
