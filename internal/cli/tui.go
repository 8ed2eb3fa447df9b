package cli

import (
	"github.com/spf13/cobra"

	"github.com/runoshun/habit/internal/app"
)

// newTUICommand creates the tui command for launching the dashboard.
// It is the same as running `habit` without arguments.
func newTUICommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the terminal dashboard",
		Long: `Launch the terminal dashboard.

Keys: up/down move, c complete today, r run rollover, a reactivate,
s toggle statistics, g refresh, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return launchTUIFunc(c)
		},
	}
}
