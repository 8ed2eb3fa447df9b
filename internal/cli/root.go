// Package cli provides the command-line interface for habit.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/tui"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
	groupDaily = "daily"
)

// annotationNoStore marks commands that run before the store is initialized.
const annotationNoStore = "habit/no-store"

// DataDirFlag is the persistent flag selecting the data directory.
// main resolves it before the container is built; cobra only documents it.
const DataDirFlag = "data-dir"

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for habit.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:   "habit",
		Short: "Daily habit tracker with rollover accounting",
		Long: `habit tracks recurring daily tasks over a date range.

Each task has a daily target. Missed days roll over into the amount due
today according to the configured strategy ("accumulative" adds the
daily target for every missed day, "reset" snaps back to the target).

Run without arguments to open the terminal dashboard.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}

			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}

			if !needsStore(cmd) {
				return nil
			}
			if !c.Store.IsInitialized() {
				return domain.ErrNotInitialized
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Default: launch the dashboard
			return launchTUIFunc(c)
		},
	}

	root.PersistentFlags().StringVar(&dataDir, DataDirFlag, "", "Data directory (default $HABIT_HOME or $XDG_DATA_HOME/habit)")

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupDaily, Title: "Daily Tracking:"},
	)

	// Setup commands
	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	migrateCmd := newMigrateCommand(c)
	migrateCmd.GroupID = groupSetup

	serveCmd := newServeCommand(c)
	serveCmd.GroupID = groupSetup

	// Task management commands
	newCmd := newNewCommand(c)
	newCmd.GroupID = groupTask

	listCmd := newListCommand(c)
	listCmd.GroupID = groupTask

	showCmd := newShowCommand(c)
	showCmd.GroupID = groupTask

	editCmd := newEditCommand(c)
	editCmd.GroupID = groupTask

	rmCmd := newRmCommand(c)
	rmCmd.GroupID = groupTask

	reactivateCmd := newReactivateCommand(c)
	reactivateCmd.GroupID = groupTask

	// Daily tracking commands
	completeCmd := newCompleteCommand(c)
	completeCmd.GroupID = groupDaily

	rolloverCmd := newRolloverCommand(c)
	rolloverCmd.GroupID = groupDaily

	statsCmd := newStatsCommand(c)
	statsCmd.GroupID = groupDaily

	logsCmd := newLogsCommand(c)
	logsCmd.GroupID = groupDaily

	tuiCmd := newTUICommand(c)
	tuiCmd.GroupID = groupDaily

	// Add subcommands
	root.AddCommand(
		initCmd,
		configCmd,
		migrateCmd,
		serveCmd,
		newCmd,
		listCmd,
		showCmd,
		editCmd,
		rmCmd,
		reactivateCmd,
		completeCmd,
		rolloverCmd,
		statsCmd,
		logsCmd,
		tuiCmd,
	)

	return root
}

// needsStore reports whether cmd reads or writes tasks.
func needsStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	for p := cmd; p != nil; p = p.Parent() {
		if _, ok := p.Annotations[annotationNoStore]; ok {
			return false
		}
	}
	return true
}

// noStore is the annotation set for commands that work without a store.
func noStore() map[string]string {
	return map[string]string{annotationNoStore: "true"}
}

// launchTUI runs the dashboard until the user quits.
func launchTUI(c *app.Container) error {
	p := tea.NewProgram(tui.New(c), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
