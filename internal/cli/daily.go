package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/runoshun/habit/internal/app"
	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/usecase"
	"github.com/spf13/cobra"
)

// newCompleteCommand creates the complete command for recording a completion.
func newCompleteCommand(c *app.Container) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task done for a day",
		Long: `Record that a task was done for a day (default today).

The task is brought up to date first, so days missed before the
completion are accounted for. Each day can be completed once.

Examples:
  habit complete 1
  habit complete 1 --date 2024-01-03`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			day, err := parseDateFlag(date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			uc := c.CompleteTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.CompleteTaskInput{
				TaskID: taskID,
				Date:   day,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed task #%d for %s (value %d, due next: %d)\n",
				taskID, out.Record.Date, out.Record.CompletedValue, out.Task.AccumulatedValue)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to complete YYYY-MM-DD (default today)")

	return cmd
}

// newRolloverCommand creates the rollover command.
func newRolloverCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollover [id]",
		Short: "Apply missed and completed days",
		Long: `Bring tasks up to date with today.

Every elapsed day since the last run is applied: a completed day resets
the amount due to the daily target, a missed day applies the configured
strategy. Without an ID every enabled, in-range task is processed.
Tasks already processed today are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in usecase.ProcessRolloverInput
			if len(args) == 1 {
				taskID, err := parseTaskID(args[0])
				if err != nil {
					return fmt.Errorf("invalid task ID: %w", err)
				}
				in.TaskID = taskID
			}

			uc := c.ProcessRolloverUseCase()
			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			printRolloverResults(cmd.OutOrStdout(), out)

			for _, f := range out.Failures {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: task #%d: %v\n", f.TaskID, f.Err)
			}
			if len(out.Failures) > 0 {
				return fmt.Errorf("rollover failed for %d task(s)", len(out.Failures))
			}
			return nil
		},
	}

	return cmd
}

// printRolloverResults prints per-task rollover results followed by a summary.
func printRolloverResults(w io.Writer, out *usecase.ProcessRolloverOutput) {
	if len(out.Results) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tDUE\tMISSED\tCOMPLETED\tSKIPPED")
		for _, r := range out.Results {
			_, _ = fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\n",
				r.TaskID,
				r.Result.AccumulatedValue,
				r.Result.MissedDays,
				r.Result.CompletedDays,
				r.Result.SkippedDays,
			)
		}
		_ = tw.Flush()
	}

	_, _ = fmt.Fprintf(w, "Rollover for %s: %d processed, %d already current, %d failed\n",
		out.Date, len(out.Results), out.Skipped, len(out.Failures))
}

// newStatsCommand creates the stats command.
func newStatsCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <id>",
		Short: "Show completion statistics",
		Long: `Show completion statistics for a task.

The window runs from the start date to today or the end date, whichever
comes first. The streak counts consecutive completed days ending at the
most recent completion inside the window.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			uc := c.ShowStatisticsUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowStatisticsInput{TaskID: taskID})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out.Statistics)
			}
			printStatistics(cmd.OutOrStdout(), out.Statistics)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

// printStatistics prints statistics in a human-readable format.
func printStatistics(w io.Writer, s domain.Statistics) {
	_, _ = fmt.Fprintf(w, "Task #%d: %s\n", s.TaskID, s.Title)
	_, _ = fmt.Fprintf(w, "Window: %s .. %s\n", s.WindowStart, s.WindowEnd)
	_, _ = fmt.Fprintf(w, "Completions: %d / %d days (%.2f%%)\n", s.TotalCompletions, s.TotalPossibleDays, s.CompletionRate)
	_, _ = fmt.Fprintf(w, "Current streak: %d\n", s.CurrentStreak)
	if s.FirstCompletion != nil {
		_, _ = fmt.Fprintf(w, "First completion: %s\n", *s.FirstCompletion)
	}
	if s.LastCompletion != nil {
		_, _ = fmt.Fprintf(w, "Last completion: %s\n", *s.LastCompletion)
	}
	if len(s.CompletedDates) > 0 {
		dates := make([]string, len(s.CompletedDates))
		for i, d := range s.CompletedDates {
			dates[i] = d.String()
		}
		_, _ = fmt.Fprintf(w, "Completed: %s\n", strings.Join(dates, ", "))
	}
}

// newLogsCommand creates the logs command.
func newLogsCommand(c *app.Container) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs [id]",
		Short: "Show the activity log",
		Long: `Show the activity log.

Without an ID the global log is shown; with an ID the task's own log.

Examples:
  habit logs
  habit logs 1 -n 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in usecase.ShowLogsInput
			in.Lines = lines
			if len(args) == 1 {
				taskID, err := parseTaskID(args[0])
				if err != nil {
					return fmt.Errorf("invalid task ID: %w", err)
				}
				in.TaskID = taskID
			}

			uc := c.ShowLogsUseCase()
			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines from the end (0 = all)")

	return cmd
}
