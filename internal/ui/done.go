package ui

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task as completed",
		Long: `Mark a task as completed. Completed tasks no longer block the
calendar: new blocks may overlap them freely.`,
		Example: `  studydesk done 3f2a`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setCompleted(cmd, args[0], true)
		},
	}
}

func (a *App) undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "undo <task-id>",
		Short:   "Mark a completed task as open again",
		Example: `  studydesk undo 3f2a`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setCompleted(cmd, args[0], false)
		},
	}
}

func (a *App) setCompleted(cmd *cobra.Command, ref string, completed bool) error {
	ctx := cmd.Context()
	t, err := a.findTask(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.repo.SetCompleted(ctx, t.ID, completed); err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	out := cmd.OutOrStdout()
	if completed {
		fmt.Fprintf(out, "%s Completed task %s: %s\n", formatOK("✓"), t.ShortID(), t.Title)
		return nil
	}
	fmt.Fprintf(out, "Reopened task %s: %s\n", t.ShortID(), t.Title)

	// A reopened task takes calendar time again.
	if !t.IsScheduled() {
		return nil
	}
	tasks, err := a.snapshot(ctx)
	if err != nil {
		return err
	}
	report, err := a.searcher.Check(tasks, *t.Start, t.EffectiveDuration(), t.ID)
	if err != nil {
		return err
	}
	if report.HasConflicts() {
		printReport(out, report, a.now().Location())
	}
	return nil
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Example: `  studydesk delete 3f2a`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := a.findTask(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.repo.DeleteTask(ctx, t.ID); err != nil {
				return fmt.Errorf("deleting task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s: %s\n", t.ShortID(), t.Title)
			return nil
		},
	}
}
