package ui

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) checkCmd() *cobra.Command {
	var (
		date     string
		start    string
		duration int
		exclude  string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a time block for conflicts",
		Long: `Check whether a block overlaps any open task, without saving anything.

Every overlapping task is listed with the overlap in minutes, followed
by the next free start. --exclude ignores one task, which is how a
move of that task is previewed.`,
		Example: `  studydesk check --start=14:00 --duration=60
  studydesk check --date=friday --start=09:00 --exclude=3f2a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			at, err := a.resolveStart(date, start, true)
			if err != nil {
				return fmt.Errorf("invalid start: %w", err)
			}

			excludeID := ""
			if exclude != "" {
				t, err := a.findTask(ctx, exclude)
				if err != nil {
					return err
				}
				excludeID = t.ID
			}

			tasks, err := a.snapshot(ctx)
			if err != nil {
				return err
			}
			report, err := a.searcher.Check(tasks, at, a.duration(duration), excludeID)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report, a.now().Location())
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday...; defaults to today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM; defaults to the next study start)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in minutes (defaults to config default_duration)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Task ID (or prefix) to ignore")

	return cmd
}

func (a *App) suggestCmd() *cobra.Command {
	var (
		date     string
		start    string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest the next free slot",
		Long: `Print the first start at or after the preferred one where a block
of the given duration overlaps no open task.

Without --start the search begins at the next study start: today's day
start, now rounded up to the quarter hour, or the next study day.`,
		Example: `  studydesk suggest --duration=90
  studydesk suggest --date=tomorrow --start=10:00 --duration=45`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			preferred, err := a.resolveStart(date, start, true)
			if err != nil {
				return fmt.Errorf("invalid start: %w", err)
			}

			tasks, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			minutes := a.duration(duration)
			suggestion, err := a.searcher.SuggestSlot(tasks, preferred, minutes)
			if err != nil {
				return err
			}

			printSuggestion(cmd.OutOrStdout(), preferred, suggestion, minutes, a.now().Location())
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday...; defaults to today)")
	cmd.Flags().StringVar(&start, "start", "", "Preferred start time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in minutes (defaults to config default_duration)")

	return cmd
}
