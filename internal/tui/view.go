package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/task"
)

// View renders the agenda for the shown day.
func (m Model) View() string {
	sections := []string{m.renderHeader()}

	switch {
	case m.err != nil:
		sections = append(sections, m.styles.ErrorStyle.Render("Error: "+m.err.Error()))
	case m.loading && m.snapshot == nil:
		sections = append(sections, m.styles.EmptyStyle.Render("Loading..."))
	default:
		sections = append(sections, m.renderTasks())
	}

	if len(m.rejected) > 0 {
		sections = append(sections, m.renderRejected())
	}
	if m.mode == ModePrompt {
		sections = append(sections, m.styles.PromptStyle.Render(m.prompt.View()))
	}
	if m.statusMsg != "" {
		sections = append(sections, m.styles.StatusStyle.Render(m.statusMsg))
	}
	sections = append(sections, "", m.help.View(m.keys))

	return m.fit(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderHeader() string {
	title := m.styles.TitleStyle.Render(m.date.Format("Monday, January 2 2006"))
	if m.date.Equal(dateutil.TruncateToDay(m.nowFunc())) {
		title += " " + m.styles.TodayStyle.Render("(today)")
	}

	stats := task.NewDayWithTasks(m.date, m.snapshot).Stats()
	line := fmt.Sprintf("%d sessions · %s planned · %d%% done",
		stats.TotalTasks, task.FormatDuration(stats.PlannedMinutes), stats.CompletedPercent())
	if n := len(m.conflicting); n > 0 {
		line += " · " + m.styles.ConflictStyle.Render(fmt.Sprintf("%d overlapping", n))
	}
	if !m.scheduler.IsStudyDay(m.date) {
		line += " · not a study day"
	}
	return title + "\n" + m.styles.StatsStyle.Render(line) + "\n"
}

func (m Model) renderTasks() string {
	var lines []string
	scheduled := 0
	for _, t := range m.tasks {
		if t.IsScheduled() {
			scheduled++
		}
	}
	if scheduled == 0 {
		lines = append(lines, m.styles.EmptyStyle.Render("No study sessions on this day."))
	}

	for i, t := range m.tasks {
		if i == scheduled {
			lines = append(lines, m.styles.SectionStyle.Render("Unscheduled"))
		}
		lines = append(lines, m.renderRow(t, i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(t *task.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	symbol := "○"
	switch {
	case t.Completed:
		symbol = "✓"
	case m.conflicting[t.ID]:
		symbol = "!"
	case !t.IsScheduled():
		symbol = "·"
	}

	when := strings.Repeat(" ", 11)
	if t.IsScheduled() {
		when = task.NewInterval(t.Start.In(m.location()), t.EffectiveDuration()).String()
	}
	length := fmt.Sprintf("%-6s", task.FormatDuration(t.EffectiveDuration()))

	titleStyle := m.styles.TaskStyle
	switch {
	case t.Completed:
		titleStyle = m.styles.DoneStyle
	case m.conflicting[t.ID]:
		titleStyle = m.styles.ConflictStyle
	}

	var b strings.Builder
	b.WriteString(cursor)
	b.WriteString(titleStyle.Render(symbol))
	b.WriteString(" ")
	b.WriteString(m.styles.TimeStyle.Render(when))
	b.WriteString(" ")
	b.WriteString(m.styles.StatsStyle.Render(length))
	b.WriteString(" ")
	if t.Subject != "" {
		b.WriteString(m.styles.SubjectStyle.Render("[" + t.Subject + "]"))
		b.WriteString(" ")
	}
	b.WriteString(titleStyle.Render(t.Title))

	row := b.String()
	if selected {
		row = m.styles.SelectedStyle.Render(row)
	}
	return row
}

// renderRejected lists the tasks that blocked the last change.
func (m Model) renderRejected() string {
	lines := []string{m.styles.PanelTitleStyle.Render("Overlaps")}
	for _, c := range m.rejected {
		iv, _ := c.Task.Interval()
		iv.Start = iv.Start.In(m.location())
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %dm overlap",
			c.Task.ShortID(), iv, c.Task.Title, c.OverlapMinutes))
	}
	return m.styles.PanelStyle.Render(strings.Join(lines, "\n"))
}

// fit truncates every line to the terminal width.
func (m Model) fit(content string) string {
	if m.width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, m.width, "…")
	}
	return strings.Join(lines, "\n")
}
