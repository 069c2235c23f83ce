package ui

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *App) rescheduleCmd() *cobra.Command {
	var (
		date     string
		start    string
		duration int
		force    bool
		auto     bool
	)

	cmd := &cobra.Command{
		Use:     "reschedule <task-id>",
		Aliases: []string{"move"},
		Short:   "Move a task to a new start",
		Long: `Move a task to a new date and time.

The task itself is ignored while checking for conflicts, so moving a
block by a few minutes never collides with its own old position. The
duration is kept unless --duration is given. Conflicts are handled like
in add: refused unless --force or --auto.`,
		Example: `  studydesk reschedule 3f2a --start=16:00
  studydesk reschedule 3f2a --date=tomorrow --start=09:00 --duration=60
  studydesk reschedule 3f2a --auto`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if force && auto {
				return fmt.Errorf("--force and --auto cannot be used together")
			}
			if start == "" && date == "" && !auto {
				return fmt.Errorf("--start, --date or --auto is required")
			}

			ctx := cmd.Context()
			t, err := a.findTask(ctx, args[0])
			if err != nil {
				return err
			}

			minutes := t.EffectiveDuration()
			if duration != 0 {
				minutes = duration
			}

			at, err := a.resolveStart(date, start, false)
			if err != nil {
				return fmt.Errorf("invalid start: %w", err)
			}
			if start == "" && date == "" && t.IsScheduled() && t.Start.After(at) {
				// --auto alone keeps a future task near its current slot.
				at = *t.Start
			}

			at, err = a.placeOrRefuse(cmd, at, minutes, t.ID, force, auto)
			if err != nil {
				return err
			}

			if err := a.repo.Reschedule(ctx, t.ID, at, minutes); err != nil {
				return fmt.Errorf("rescheduling task: %w", err)
			}
			a.logger.Debug("task rescheduled", zap.String("id", t.ID), zap.Time("start", at))

			t.Start = &at
			t.Duration = minutes
			fmt.Fprintf(cmd.OutOrStdout(), "Rescheduled task %s: %s\n", t.ShortID(), describeTask(t, a.now().Location()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD, today, tomorrow, monday...; defaults to today)")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "New duration in minutes (defaults to the current one)")
	cmd.Flags().BoolVar(&force, "force", false, "Save even when the block overlaps other tasks")
	cmd.Flags().BoolVar(&auto, "auto", false, "Move the block to the next free slot when it overlaps")

	return cmd
}
