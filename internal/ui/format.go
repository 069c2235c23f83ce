package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/javiermolinar/studydesk/internal/conflict"
	"github.com/javiermolinar/studydesk/internal/task"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const dayLayout = "Mon Jan 2"

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// formatSlot formats a block as "Mon Jan 2 15:04-15:34" in loc.
func formatSlot(start time.Time, minutes int, loc *time.Location) string {
	iv := task.NewInterval(start.In(loc), minutes)
	return iv.Start.Format(dayLayout) + " " + iv.String()
}

// describeTask formats a task as a single line for confirmations.
func describeTask(t *task.Task, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(t.Title)
	if t.Subject != "" {
		sb.WriteString(" [" + formatSubject(t.Subject) + "]")
	}
	if t.IsScheduled() {
		fmt.Fprintf(&sb, "  %s (%s)", formatSlot(*t.Start, t.EffectiveDuration(), loc), task.FormatDuration(t.EffectiveDuration()))
	} else {
		sb.WriteString("  " + formatMuted("unscheduled"))
	}
	return sb.String()
}

// statusSymbol returns the status indicator for a task.
func statusSymbol(t *task.Task, conflicting bool) string {
	switch {
	case t.Completed:
		return formatOK("✓")
	case conflicting:
		return formatConflict("!")
	case !t.IsScheduled():
		return formatMuted("·")
	default:
		return "○"
	}
}

// renderTaskTable renders tasks with status, id, time, length, subject and title.
func renderTaskTable(tasks []*task.Task, conflicting map[string]bool, loc *time.Location) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		when := formatMuted("-")
		if t.IsScheduled() {
			iv, _ := t.Interval()
			iv.Start = iv.Start.In(loc)
			when = iv.String()
		}
		rows = append(rows, []string{
			statusSymbol(t, conflicting[t.ID]),
			t.ShortID(),
			when,
			task.FormatDuration(t.EffectiveDuration()),
			formatSubject(t.Subject),
			t.Title,
		})
	}
	return renderTable(
		[]string{"", "ID", "Time", "Length", "Subject", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

// renderConflictTable lists conflicting tasks with their overlap.
func renderConflictTable(conflicts []conflict.Conflict, loc *time.Location) string {
	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, []string{
			c.Task.ShortID(),
			formatSlot(*c.Task.Start, c.Task.EffectiveDuration(), loc),
			formatConflict(fmt.Sprintf("%dm", c.OverlapMinutes)),
			formatSubject(c.Task.Subject),
			c.Task.Title,
		})
	}
	return renderTable(
		[]string{"ID", "When", "Overlap", "Subject", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

// printReport writes the outcome of a conflict check.
func printReport(w io.Writer, report conflict.Report, loc *time.Location) {
	slot := formatSlot(report.Start, report.Duration, loc)
	if !report.HasConflicts() {
		fmt.Fprintf(w, "%s %s is free\n", formatOK("✓"), slot)
		return
	}

	fmt.Fprintf(w, "%s %s conflicts with %d task(s), %dm overlapping\n",
		formatConflict("✗"), slot, len(report.Conflicts), conflict.TotalOverlap(report.Conflicts))
	fmt.Fprintln(w, renderConflictTable(report.Conflicts, loc))

	if report.Suggestion != nil {
		printSuggestion(w, report.Start, *report.Suggestion, report.Duration, loc)
	}
	if len(report.Residual) > 0 {
		fmt.Fprintln(w, renderConflictTable(report.Residual, loc))
	}
}

// printSuggestion writes the next free slot found from preferred.
func printSuggestion(w io.Writer, preferred time.Time, s conflict.Suggestion, minutes int, loc *time.Location) {
	slot := formatSlot(s.Start, minutes, loc)
	if s.Exhausted {
		fmt.Fprintf(w, "%s no free slot within %d attempts; best effort: %s\n",
			formatWarn("!"), s.Attempts, slot)
		return
	}
	if !s.Moved(preferred) {
		fmt.Fprintf(w, "%s next free slot: %s\n", formatOK("→"), slot)
		return
	}
	fmt.Fprintf(w, "%s next free slot: %s %s\n", formatOK("→"), slot,
		formatMuted(fmt.Sprintf("(moved from %s, %d attempts)", task.FormatClock(preferred.In(loc)), s.Attempts)))
}

// printInsightWrapped formats and prints coach output preserving structure.
func printInsightWrapped(w io.Writer, insight string, width int) {
	insight = stripMarkdownCodeBlocks(insight)

	for _, line := range strings.Split(insight, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		prefix, content, contentWidth, isHeader := parseInsightLine(trimmed, width)
		if isHeader {
			fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}
		wrapAndPrint(w, content, prefix, contentWidth)
	}
}

// parseInsightLine parses a line and returns formatting info.
// Returns: prefix, content, contentWidth, isHeader
func parseInsightLine(trimmed string, width int) (prefix, content string, contentWidth int, isHeader bool) {
	prefix = "  "
	content = trimmed
	contentWidth = width - 2

	switch {
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		prefix = "    • "
		content = strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
		contentWidth = width - 6

	case strings.HasPrefix(trimmed, "#"):
		content = strings.TrimLeft(trimmed, "# ")
		isHeader = true

	case strings.HasSuffix(trimmed, ":") && strings.ToUpper(trimmed) == trimmed:
		// "NEXT WEEK:" style section labels
		isHeader = true

	case strings.HasPrefix(trimmed, ">"):
		content = strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
		prefix = "  │ "
		contentWidth = width - 4
	}

	return prefix, content, contentWidth, isHeader
}

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}
	width = max(width, 20)

	continuation := strings.Repeat(" ", len([]rune(prefix)))
	lead := prefix
	line := ""
	for _, word := range words {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			fmt.Fprintln(w, formatInsight(lead+line))
			lead = continuation
			line = word
		}
	}
	if line != "" {
		fmt.Fprintln(w, formatInsight(lead+line))
	}
}

// stripMarkdownCodeBlocks removes ```...``` fences from text.
func stripMarkdownCodeBlocks(s string) string {
	var result []string
	inCodeBlock := false
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if !inCodeBlock {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
