package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/studydesk/internal/studyplan"
	"github.com/javiermolinar/studydesk/internal/task"
)

const maxRetries = 3

func (a *App) planCmd() *cobra.Command {
	var (
		modelFlag string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "plan <goal>",
		Short: "Plan study sessions for a goal with AI",
		Long: `Use AI to break a study goal into sessions and place them on the calendar.

The model proposes blocks with a preferred start. Each block is then moved
to the first free slot, so the plan never overlaps existing tasks or
itself. Blocks the model put outside your study hours are flagged.

Interactive mode:
  After the plan is shown, you can:
  - [a]ccept: Save the sessions
  - [m]odify: Tell the model what to change
  - [c]ancel: Exit without saving`,
		Example: `  studydesk plan "Prepare for the linear algebra midterm on Friday"
  studydesk plan "Read chapters 3-5 of the history book this week" --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			goal := strings.Join(args, " ")

			model := modelFlag
			if model == "" {
				model = a.config.LLM.Model
			}
			client, err := a.newClient(a.config.LLM.Provider, model, a.config.LLM.BaseURL)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			p := studyplan.New(client, a.config, a.repo,
				studyplan.WithLogger(a.logger),
				studyplan.WithClock(a.now),
				studyplan.WithSearcher(a.searcher),
			)

			fmt.Fprintln(out, "Planning study sessions...")
			result, err := p.PlanWithRetry(ctx, studyplan.PlanRequest{Goal: goal}, maxRetries)
			if err != nil {
				return fmt.Errorf("planning: %w", err)
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			for {
				displayPlanResult(out, result, a.now().Location())

				if result.HasValidationErrors() {
					fmt.Fprintln(out, "\nValidation errors (retry limit reached):")
					for _, ve := range result.ValidationErrors {
						fmt.Fprintf(out, "  - %s\n", ve)
					}
				}

				if dryRun {
					fmt.Fprintln(out, "\n(Dry run - sessions not saved)")
					return nil
				}

				fmt.Fprint(out, "\n[a]ccept / [m]odify / [c]ancel: ")
				choice, err := readLine(reader)
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}

				switch strings.ToLower(choice) {
				case "a", "accept":
					if result.HasValidationErrors() {
						fmt.Fprintln(out, "Cannot save: there are unresolved validation errors.")
						fmt.Fprintln(out, "Please [m]odify the plan or [c]ancel.")
						continue
					}
					saved, err := p.Save(ctx, result)
					if err != nil {
						return fmt.Errorf("saving sessions: %w", err)
					}
					fmt.Fprintf(out, "\n%d sessions saved\n", len(saved))
					return nil

				case "m", "modify":
					fmt.Fprint(out, "What would you like to change? ")
					feedback, err := readLine(reader)
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
					if feedback == "" {
						fmt.Fprintln(out, "No change provided, showing current plan...")
						continue
					}

					fmt.Fprintln(out, "\nReplanning...")
					result, err = p.ContinuePlanning(ctx, feedback, maxRetries)
					if err != nil {
						return fmt.Errorf("replanning: %w", err)
					}

				case "c", "cancel":
					fmt.Fprintln(out, "Planning cancelled.")
					return nil

				default:
					fmt.Fprintln(out, "Invalid choice. Please enter 'a', 'm', or 'c'.")
				}
			}
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without saving")

	return cmd
}

// readLine reads one trimmed line. A final line without newline is
// accepted; EOF with nothing read is an error so the loop cannot spin.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// displayPlanResult shows the planning result to the user.
func displayPlanResult(w io.Writer, result *studyplan.PlanResult, loc *time.Location) {
	fmt.Fprintln(w)

	if len(result.Notes) > 0 {
		fmt.Fprintln(w, "Notes:")
		for _, n := range result.Notes {
			fmt.Fprintf(w, "  * %s\n", n)
		}
	}

	if result.TotalTasks() == 0 {
		fmt.Fprintln(w, "\nNo sessions proposed.")
		return
	}

	for _, dateStr := range result.SortedDates {
		planned := result.TasksByDate[dateStr]
		if len(planned) == 0 {
			continue
		}

		date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			fmt.Fprintf(w, "\n%s\n", formatHeader(dateStr))
		} else {
			fmt.Fprintf(w, "\n%s\n", formatHeader(date.Format("Monday, January 2")))
		}
		fmt.Fprintln(w, renderPlannedTable(planned, loc))
	}

	fmt.Fprintf(w, "Total: %d sessions, %s", result.TotalTasks(), task.FormatDuration(result.TotalMinutes()))
	if len(result.SortedDates) > 1 {
		fmt.Fprintf(w, " across %d days", len(result.SortedDates))
	}
	fmt.Fprintln(w)
}

func renderPlannedTable(planned []studyplan.PlannedTask, loc *time.Location) string {
	rows := make([][]string, 0, len(planned))
	for _, t := range planned {
		iv := task.NewInterval(t.Start.In(loc), t.Duration)

		var flags []string
		if t.Moved() {
			flags = append(flags, formatMuted("moved from "+task.FormatClock(t.Preferred.In(loc))))
		}
		if t.OutsideHours {
			flags = append(flags, formatWarn("outside study hours"))
		}
		if t.Exhausted {
			flags = append(flags, formatConflict("still overlaps"))
		}

		rows = append(rows, []string{
			iv.String(),
			task.FormatDuration(t.Duration),
			formatSubject(t.Subject),
			t.Title,
			strings.Join(flags, ", "),
		})
	}
	return renderTable(
		[]string{"Time", "Length", "Subject", "Title", ""},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}
