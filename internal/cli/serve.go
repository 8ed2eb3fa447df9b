package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// newServeCommand creates the serve command.
func newServeCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Addr     string
		Interval time.Duration
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the rollover scheduler",
		Long: `Run the JSON HTTP API together with a background scheduler that
processes the daily rollover for every eligible task.

The address and interval default to [server] addr and interval in the
config. An interval of 0 disables the scheduler.

Examples:
  habit serve
  habit serve --addr :9090 --interval 15m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := c.AppConfig.Server.Addr
			if cmd.Flags().Changed("addr") {
				addr = opts.Addr
			}
			interval := c.AppConfig.Server.Interval
			if cmd.Flags().Changed("interval") {
				interval = opts.Interval
			}

			if c.AppConfig.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(c)
			sched := server.NewScheduler(c, interval)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(ctx, addr) })
			g.Go(func() error { return sched.Run(ctx) })
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "Rollover interval (default from config, 0 disables)")

	return cmd
}
