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
	"gopkg.in/yaml.v3"
)

// newNewCommand creates the new command for creating tasks.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title    string
		Body     string
		Priority string
		Start    string
		End      string
		Days     int
		Target   int
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new daily task.

The task runs from --start (default today) through --end inclusive.
Use --days instead of --end to give the length of the range.

Examples:
  # Fifty push-ups a day for January
  habit new --title "Push-ups" --target 50 --start 2024-01-01 --end 2024-01-31

  # Read for 20 minutes a day for the next two weeks
  habit new --title "Read" --target 20 --days 14 --priority high`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDateFlag(opts.Start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}

			end, err := parseDateFlag(opts.End)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			if opts.Days > 0 {
				if !end.IsZero() {
					return fmt.Errorf("--end and --days cannot be used together")
				}
				first := start
				if first.IsZero() {
					first = domain.Today(c.Clock, c.Location)
				}
				end = first.AddDays(opts.Days - 1)
			}
			if end.IsZero() {
				return fmt.Errorf("--end or --days is required")
			}

			var priority domain.Priority
			if opts.Priority != "" {
				priority, err = domain.ParsePriority(opts.Priority)
				if err != nil {
					return err
				}
			}

			uc := c.NewTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.NewTaskInput{
				Title:       opts.Title,
				Description: opts.Body,
				Priority:    priority,
				StartDate:   start,
				EndDate:     end,
				DailyTarget: opts.Target,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d\n", out.TaskID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&opts.Body, "body", "", "Task description")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Priority: low, medium or high (default medium)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "First day YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.End, "end", "", "Last day YYYY-MM-DD")
	cmd.Flags().IntVar(&opts.Days, "days", 0, "Number of days instead of --end")
	cmd.Flags().IntVar(&opts.Target, "target", 1, "Daily target value")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Mode     string
		Priority string
		Date     string
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks.

Modes:
  all            every task, newest first (default)
  priority       enabled tasks not completed today, highest priority first
  active         enabled tasks in range on --date and not completed on it
  with-priority  enabled tasks of --priority not completed today

Examples:
  habit list
  habit list --mode active --date 2024-01-04
  habit list --priority high`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := usecase.ParseListMode(opts.Mode)
			if err != nil {
				return err
			}

			var priority domain.Priority
			if opts.Priority != "" {
				priority, err = domain.ParsePriority(opts.Priority)
				if err != nil {
					return err
				}
				if opts.Mode == "" {
					mode = usecase.ListPriority
				}
			}

			date, err := parseDateFlag(opts.Date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			uc := c.ListTasksUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListTasksInput{
				Mode:     mode,
				Priority: priority,
				Date:     date,
			})
			if err != nil {
				return err
			}

			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			printTaskList(cmd.OutOrStdout(), out.Tasks, out.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "", "Listing mode: all, priority, active or with-priority")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Only tasks with this priority")
	cmd.Flags().StringVar(&opts.Date, "date", "", "Day for the active mode YYYY-MM-DD (default today)")

	return cmd
}

// printTaskList prints tasks in a table format.
func printTaskList(w io.Writer, tasks []*domain.Task, today domain.Date) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tPRI\tDUE\tTARGET\tRANGE\tSTATUS\tTITLE")

	for _, task := range tasks {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s..%s\t%s\t%s\n",
			task.ID,
			task.Priority.Display(),
			task.AccumulatedValue,
			task.DailyTargetValue,
			task.StartDate,
			task.EndDate,
			taskStatus(task, today),
			task.Title,
		)
	}

	_ = tw.Flush()
}

// taskStatus returns a short label describing where the task stands on today.
func taskStatus(task *domain.Task, today domain.Date) string {
	switch {
	case !task.Enabled:
		return "disabled"
	case task.IsExpired(today):
		return "expired"
	case today.Before(task.StartDate):
		return "upcoming"
	default:
		return "active"
	}
}

// Output formats for show.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// taskDocument is the structured form of show output.
type taskDocument struct {
	Task        *domain.Task              `json:"task" yaml:"task"`
	Status      string                    `json:"status" yaml:"status"`
	Completions []domain.CompletionRecord `json:"completions" yaml:"completions"`
	ID          int                       `json:"id" yaml:"id"`
	Active      bool                      `json:"active" yaml:"active"`
}

// newShowCommand creates the show command for displaying task details.
func newShowCommand(c *app.Container) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Long: `Display detailed information about a task.

Shows the date range, the amount due today, the last processed day and
the completion history.

Examples:
  habit show 1
  habit show 1 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			uc := c.ShowTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			doc := taskDocument{
				Task:        out.Task,
				Status:      taskStatus(out.Task, out.Today),
				Completions: out.Completions,
				ID:          out.Task.ID,
				Active:      out.Active,
			}
			if doc.Completions == nil {
				doc.Completions = []domain.CompletionRecord{}
			}

			w := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case formatText, "":
				printTaskDetails(w, out)
				return nil
			case formatJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case formatYAML:
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json or yaml")

	return cmd
}

// printTaskDetails prints task details in a human-readable format.
func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput) {
	task := out.Task

	_, _ = fmt.Fprintf(w, "Task #%d: %s\n", task.ID, task.Title)
	_, _ = fmt.Fprintf(w, "Priority: %s\n", task.Priority.Display())
	_, _ = fmt.Fprintf(w, "Status: %s\n", taskStatus(task, out.Today))
	_, _ = fmt.Fprintf(w, "Range: %s .. %s\n", task.StartDate, task.EndDate)
	_, _ = fmt.Fprintf(w, "Daily target: %d\n", task.DailyTargetValue)
	_, _ = fmt.Fprintf(w, "Due today: %d\n", task.AccumulatedValue)
	if !task.LastProcessedDate.IsZero() {
		_, _ = fmt.Fprintf(w, "Last processed: %s\n", task.LastProcessedDate)
	}
	_, _ = fmt.Fprintf(w, "Created: %s\n", task.Created.Format("2006-01-02 15:04:05"))

	if task.Description != "" {
		_, _ = fmt.Fprintln(w, "\nDescription:")
		for _, line := range strings.Split(task.Description, "\n") {
			_, _ = fmt.Fprintf(w, "  %s\n", line)
		}
	}

	if len(out.Completions) > 0 {
		_, _ = fmt.Fprintf(w, "\nCompletions (%d):\n", len(out.Completions))
		for _, r := range out.Completions {
			_, _ = fmt.Fprintf(w, "  %s  value %d\n", r.Date, r.CompletedValue)
		}
	}
}

// parseTaskID parses a task ID string, accepting an optional "#" prefix.
func parseTaskID(s string) (int, error) {
	// Remove leading # if present
	s = strings.TrimPrefix(s, "#")
	var id int
	_, err := fmt.Sscanf(s, "%d", &id)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("task ID must be positive")
	}
	return id, nil
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
// An empty string yields the zero Date.
func parseDateFlag(s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(s)
}

// newEditCommand creates the edit command for editing task information.
func newEditCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title    string
		Body     string
		Priority string
		Start    string
		End      string
		Target   int
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task information",
		Long: `Edit an existing task.

Only the flags given are changed. The amount due today is left as is;
the next rollover uses the new daily target.

Examples:
  habit edit 1 --title "Pull-ups"
  habit edit 1 --end 2024-02-29 --target 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			in := usecase.EditTaskInput{TaskID: taskID}
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &opts.Title
			}
			if flags.Changed("body") {
				in.Description = &opts.Body
			}
			if flags.Changed("priority") {
				p, err := domain.ParsePriority(opts.Priority)
				if err != nil {
					return err
				}
				in.Priority = &p
			}
			if flags.Changed("start") {
				d, err := domain.ParseDate(opts.Start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				in.StartDate = &d
			}
			if flags.Changed("end") {
				d, err := domain.ParseDate(opts.End)
				if err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
				in.EndDate = &d
			}
			if flags.Changed("target") {
				in.DailyTarget = &opts.Target
			}

			uc := c.EditTaskUseCase()
			out, err := uc.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%d: %s\n", out.Task.ID, out.Task.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New title")
	cmd.Flags().StringVar(&opts.Body, "body", "", "New description")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "New priority: low, medium or high")
	cmd.Flags().StringVar(&opts.Start, "start", "", "New first day YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.End, "end", "", "New last day YYYY-MM-DD")
	cmd.Flags().IntVar(&opts.Target, "target", 0, "New daily target value")

	return cmd
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Long: `Delete a task and its completion history.

Examples:
  # Delete task by ID
  habit rm 1

  # Delete task using # prefix
  habit rm "#1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			uc := c.DeleteTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.DeleteTaskInput{
				TaskID: taskID,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d: %s\n", taskID, out.Title)
			return nil
		},
	}

	return cmd
}

// newReactivateCommand creates the reactivate command.
func newReactivateCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "reactivate <id>",
		Short: "Re-enable a disabled task",
		Long: `Re-enable a disabled task so rollover and listings include it again.

The date range and the amount due are not changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}

			uc := c.ReactivateTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ReactivateTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			if out.AlreadyEnabled {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task #%d is already enabled\n", taskID)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reactivated task #%d: %s\n", taskID, out.Task.Title)
			return nil
		},
	}
}
