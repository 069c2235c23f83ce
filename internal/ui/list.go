package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/task"
)

func (a *App) listCmd() *cobra.Command {
	var (
		date string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List study tasks",
		Long: `List study tasks grouped by day.

Without flags lists today's tasks. --all lists every task, with
unscheduled ones last. Open tasks that overlap another open task are
marked with "!", including sessions that cross midnight.`,
		Example: `  studydesk list
  studydesk list --date=tomorrow
  studydesk list --date=2025-01-15
  studydesk list --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all && date != "" {
				return fmt.Errorf("--all and --date cannot be used together")
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			now := a.now()

			// Conflict markers need every task: a session from the
			// previous evening can run into the listed day.
			snapshot, err := a.repo.ListTasks(ctx)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			tasks := snapshot
			if !all {
				day, err := dateutil.ParseRelativeDate(date, now, true)
				if err != nil {
					return fmt.Errorf("invalid date: %w", err)
				}
				from, to := dateutil.DayRange(day)
				tasks, err = a.repo.ListTasksBetween(ctx, from, to)
				if err != nil {
					return fmt.Errorf("listing tasks: %w", err)
				}
			}

			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}

			printDays(out, tasks, snapshot, now.Location())
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday...; defaults to today)")
	cmd.Flags().BoolVar(&all, "all", false, "List every task, including unscheduled ones")

	return cmd
}

// printDays prints tasks grouped by local day, then unscheduled tasks.
// Conflicts are marked against snapshot.
func printDays(w io.Writer, tasks, snapshot []*task.Task, loc *time.Location) {
	var (
		days        []*task.Day
		unscheduled []*task.Task
	)
	byDate := make(map[string]*task.Day)
	for _, t := range tasks {
		if !t.IsScheduled() {
			unscheduled = append(unscheduled, t)
			continue
		}
		local := t.Start.In(loc)
		key := local.Format("2006-01-02")
		day, ok := byDate[key]
		if !ok {
			day = task.NewDay(local)
			day.SetSnapshot(snapshot)
			byDate[key] = day
			days = append(days, day)
		}
		day.AddTask(t)
	}

	for i, day := range days {
		if i > 0 {
			fmt.Fprintln(w)
		}
		stats := day.Stats()
		fmt.Fprintf(w, "%s %s\n", formatHeader(day.Date.Format("Monday, January 2")),
			formatMuted(fmt.Sprintf("%s planned, %d%% done", task.FormatDuration(stats.PlannedMinutes), stats.CompletedPercent())))
		fmt.Fprintln(w, renderTaskTable(day.Tasks(), day.Conflicting(), loc))
	}

	if len(unscheduled) > 0 {
		if len(days) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, formatHeader("Unscheduled"))
		fmt.Fprintln(w, renderTaskTable(unscheduled, nil, loc))
	}
}
