package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/studydesk/internal/task"
)

func (a *App) addCmd() *cobra.Command {
	var (
		date     string
		start    string
		duration int
		subject  string
		force    bool
		auto     bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a study task",
		Long: `Add a study task to the calendar.

The new block is checked against every open task. When it overlaps,
the conflicts and the next free start are printed and nothing is saved
unless --force (keep the overlap) or --auto (take the suggested start)
is given.

Without --start the task is kept unscheduled, unless --auto is set, in
which case it goes to the next study start of --date.`,
		Example: `  studydesk add "Read chapter 4" --subject=Biology --start=14:00 --duration=45
  studydesk add "Problem set 3" --date=tomorrow --start=09:00 --auto
  studydesk add "Revise notes" --auto
  studydesk add "Someday reading"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if force && auto {
				return fmt.Errorf("--force and --auto cannot be used together")
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			now := a.now()
			loc := now.Location()
			title := strings.Join(args, " ")
			minutes := a.duration(duration)

			if start == "" && !auto {
				t, err := task.New(title, subject, nil, minutes, now)
				if err != nil {
					return err
				}
				if err := a.repo.CreateTask(ctx, t); err != nil {
					return fmt.Errorf("creating task: %w", err)
				}
				fmt.Fprintf(out, "Created task %s: %s\n", t.ShortID(), describeTask(t, loc))
				return nil
			}

			at, err := a.resolveStart(date, start, false)
			if err != nil {
				return fmt.Errorf("invalid start: %w", err)
			}

			at, err = a.placeOrRefuse(cmd, at, minutes, "", force, auto)
			if err != nil {
				return err
			}

			t, err := task.New(title, subject, &at, minutes, now)
			if err != nil {
				return err
			}
			if err := a.repo.CreateTask(ctx, t); err != nil {
				return fmt.Errorf("creating task: %w", err)
			}
			a.logger.Debug("task created", zap.String("id", t.ID), zap.Time("start", at))

			fmt.Fprintf(out, "Created task %s: %s\n", t.ShortID(), describeTask(t, loc))
			if !a.scheduler.IsWithinStudyHours(at) {
				fmt.Fprintf(out, "%s starts outside your study hours (%s-%s)\n",
					formatWarn("!"), a.scheduler.DayStart(), a.scheduler.DayEnd())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday...; defaults to today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in minutes (defaults to config default_duration)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject or course")
	cmd.Flags().BoolVar(&force, "force", false, "Save even when the block overlaps other tasks")
	cmd.Flags().BoolVar(&auto, "auto", false, "Move the block to the next free slot when it overlaps")

	return cmd
}

// placeOrRefuse checks the candidate against the full snapshot. It returns
// the start to save: the candidate itself, the suggested start with auto,
// or an error wrapping task.ErrTimeBlockOverlap.
func (a *App) placeOrRefuse(cmd *cobra.Command, start time.Time, minutes int, excludeID string, force, auto bool) (time.Time, error) {
	tasks, err := a.snapshot(cmd.Context())
	if err != nil {
		return time.Time{}, err
	}

	report, err := a.searcher.Check(tasks, start, minutes, excludeID)
	if err != nil {
		return time.Time{}, err
	}
	if !report.HasConflicts() {
		return start, nil
	}

	out := cmd.OutOrStdout()
	printReport(out, report, a.now().Location())

	switch {
	case force:
		a.logger.Info("saving overlapping task", zap.Int("conflicts", len(report.Conflicts)))
		return start, nil
	case auto:
		if !report.Resolved() {
			fmt.Fprintln(out, formatWarn("! the suggested start still overlaps; saving anyway"))
		}
		return report.Suggestion.Start, nil
	default:
		return time.Time{}, fmt.Errorf("%w: use --auto to take the suggested slot or --force to keep it", task.ErrTimeBlockOverlap)
	}
}
