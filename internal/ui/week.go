package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/llm"
	"github.com/javiermolinar/studydesk/internal/summary"
	"github.com/javiermolinar/studydesk/internal/task"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		date    string
		insight bool
		model   string
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show a week of study sessions with stats",
		Long: `Display Monday through Sunday of a week: the sessions of each day,
time per day and per subject, and how many open sessions overlap.

With --insight the configured model adds a short review of the week.`,
		Example: `  studydesk week
  studydesk week --date=2025-03-12
  studydesk week --insight`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			now := a.now()

			ref, err := dateutil.ParseRelativeDate(date, now, true)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}

			opts := summary.BuildWeekSummaryOptions{WeekStart: ref}
			if insight {
				if model == "" {
					model = a.config.LLM.Model
				}
				client, err := a.newClient(a.config.LLM.Provider, model, a.config.LLM.BaseURL)
				if err != nil {
					return fmt.Errorf("creating LLM client: %w", err)
				}
				opts.Coach = llm.NewCoach(client)
			}

			weekSummary, err := summary.BuildWeekSummary(ctx, a.repo, opts)
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}

			printWeekSummary(out, weekSummary, now.Location(), termWidth())
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day of the week to show (defaults to today)")
	cmd.Flags().BoolVar(&insight, "insight", false, "Ask the LLM for a short review of the week")
	cmd.Flags().StringVar(&model, "model", "", "LLM model to use (default from config)")
	return cmd
}

func printWeekSummary(w io.Writer, ws *summary.WeekSummary, loc *time.Location, width int) {
	header := fmt.Sprintf("WEEK: %s - %s",
		ws.Start.Format("Mon Jan 2"),
		ws.End.AddDate(0, 0, -1).Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))

	if len(ws.Tasks) == 0 {
		fmt.Fprintln(w, "  No study sessions scheduled for this week.")
		return
	}

	for _, day := range ws.Week.Days {
		if day.Len() == 0 {
			continue
		}
		fmt.Fprintf(w, "\n  %s\n", formatHeader(day.Date.Format("Monday, January 2")))
		fmt.Fprintln(w, renderTaskTable(day.Tasks(), day.Conflicting(), loc))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, renderDayStatsTable(ws.Stats))
	if len(ws.Stats.Subjects) > 0 {
		fmt.Fprintln(w, renderSubjectTable(ws.Stats.Subjects))
	}

	printWeekStats(w, ws.Stats)

	if ws.Insight != "" {
		fmt.Fprintf(w, "\n  %s\n", formatHeader("INSIGHT"))
		fmt.Fprintln(w, strings.Repeat("─", min(width, 74)))
		printInsightWrapped(w, ws.Insight, min(width, 74)-2)
	}
	fmt.Fprintln(w)
}

func renderDayStatsTable(stats task.WeekStats) string {
	rows := make([][]string, 0, 7)
	for i, ds := range stats.DayStats {
		if ds.TotalTasks == 0 {
			continue
		}
		rows = append(rows, []string{
			task.WeekdayShortName(i),
			fmt.Sprintf("%d/%d", ds.CompletedTasks, ds.TotalTasks),
			task.FormatDuration(ds.PlannedMinutes),
			task.FormatDuration(ds.CompletedMinutes),
			fmt.Sprintf("%d%%", ds.CompletedPercent()),
		})
	}
	return renderTable(
		[]string{"Day", "Sessions", "Planned", "Done", "%"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderSubjectTable(subjects []task.SubjectTotal) string {
	rows := make([][]string, 0, len(subjects))
	for _, st := range subjects {
		name := st.Subject
		if name == "" {
			name = formatMuted("(none)")
		} else {
			name = formatSubject(name)
		}
		rows = append(rows, []string{
			name,
			task.FormatDuration(st.PlannedMinutes),
			task.FormatDuration(st.CompletedMinutes),
		})
	}
	return renderTable(
		[]string{"Subject", "Planned", "Done"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}

func printWeekStats(w io.Writer, stats task.WeekStats) {
	fmt.Fprintf(w, "  Sessions: %d/%d done  |  Planned: %s  |  Done: %s\n",
		stats.CompletedTasks, stats.TotalTasks,
		task.FormatDuration(stats.PlannedMinutes),
		task.FormatDuration(stats.CompletedMinutes))
	fmt.Fprintf(w, "  Progress: %s\n", progressBar(stats.CompletedMinutes, stats.PlannedMinutes, 20))

	if day, minutes := stats.BestDay(); day >= 0 {
		fmt.Fprintf(w, "  Best day: %s (%s)\n", task.WeekdayName(day), task.FormatDuration(minutes))
	}
	if stats.Conflicts > 0 {
		fmt.Fprintf(w, "  %s\n", formatConflict(fmt.Sprintf("Overlapping pairs: %d", stats.Conflicts)))
	}
}

// progressBar renders completed/planned minutes as a bar.
func progressBar(done, total, width int) string {
	if total == 0 {
		return "[" + strings.Repeat("░", width) + "] (0%)"
	}
	done = min(done, total)
	filled := (done * width) / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", formatOK(bar), formatMuted(fmt.Sprintf("(%d%%)", done*100/total)))
}
