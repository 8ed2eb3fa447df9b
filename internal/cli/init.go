package cli

import (
	"fmt"

	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/usecase"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the habit data directory",
		Long: `Initialize the habit data directory.

This command creates the data directory with:
- the task store for the configured backend (json, sqlite or git)
- logs/: directory for log files
- locks/: directory for per-task lock files

Running it again on an initialized directory is harmless.`,
		Annotations: noStore(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitRepoUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitRepoInput{
				DataDir: c.Config.DataDir,
			})
			if err != nil {
				return err
			}

			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "habit already initialized in %s\n", out.DataDir)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized habit in %s (%s store)\n", out.DataDir, c.AppConfig.Store.Backend)
			return nil
		},
	}
}
