package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase"
	"github.com/spf13/cobra"
)

// openStoreFunc opens the migration destination, allowing it to be mocked in tests.
var openStoreFunc = app.OpenStore

// newMigrateCommand creates the migrate command.
func newMigrateCommand(c *app.Container) *cobra.Command {
	var opts struct {
		To              string
		SkipCompletions bool
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy tasks to another store backend",
		Long: `Copy every task and its completion history from the configured
store into another backend in the same data directory.

Tasks already present and identical in the destination are skipped; a
different task under the same ID aborts the migration. The configured
backend is not changed: edit [store] backend afterwards.

Examples:
  # Move from tasks.json to SQLite
  habit migrate --to sqlite

  # Copy tasks only
  habit migrate --to git --skip-completions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			to := strings.ToLower(strings.TrimSpace(opts.To))
			if err := domain.ValidateStoreBackend(to); err != nil {
				return err
			}
			if to == c.AppConfig.Store.Backend {
				return fmt.Errorf("store is already %q", to)
			}

			dest, err := openStoreFunc(to, c.Config.DataDir, c.AppConfig.Store.Namespace)
			if err != nil {
				return err
			}

			uc := c.MigrateStoreUseCase(dest)
			out, err := uc.Execute(cmd.Context(), usecase.MigrateStoreInput{
				SkipCompletions: opts.SkipCompletions,
			})
			if closer, ok := dest.(io.Closer); ok {
				err = errors.Join(err, closer.Close())
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Migrated %d of %d task(s) to %s (%d unchanged, %d completion record(s))\n",
				out.Migrated, out.Total, to, out.Skipped, out.Completions)
			_, _ = fmt.Fprintf(w, "Set [store] backend = %q in %s to use it.\n", to, domain.RepoConfigPath(c.Config.DataDir))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "Destination backend: json, sqlite or git (required)")
	cmd.Flags().BoolVar(&opts.SkipCompletions, "skip-completions", false, "Do not copy completion history")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
