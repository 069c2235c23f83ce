package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/task"
	"github.com/javiermolinar/studydesk/internal/tui/commands"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	Today    key.Binding
	Toggle   key.Binding
	Suggest  key.Binding
	SetStart key.Binding
	Copy     key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "today"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "done/undo"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next free slot"),
		),
		SetStart: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "set start"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Suggest, k.SetStart, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevDay, k.NextDay, k.Today},
		{k.Toggle, k.Suggest, k.SetStart, k.Copy},
		{k.Reload, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key", zap.String("key", msg.String()), zap.Int("mode", int(m.mode)))

	// Global keys (work in all modes)
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevDay):
		return m.goToDay(m.date.AddDate(0, 0, -1))

	case key.Matches(msg, m.keys.NextDay):
		return m.goToDay(m.date.AddDate(0, 0, 1))

	case key.Matches(msg, m.keys.Today):
		return m.goToDay(dateutil.TruncateToDay(m.nowFunc()))

	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, commands.LoadDay(m.ctx, m.repo, m.date)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		t := m.selected()
		if t == nil {
			return m, nil
		}
		m.rejected = nil
		return m, commands.SetCompleted(m.ctx, m.repo, t, !t.Completed)

	case key.Matches(msg, m.keys.Suggest):
		return m.moveToNextFreeSlot()

	case key.Matches(msg, m.keys.SetStart):
		t := m.selected()
		if t == nil {
			return m, nil
		}
		if t.Completed {
			return m, commands.Status("Completed tasks cannot be moved")
		}
		m.mode = ModePrompt
		m.prompt.SetValue("")
		if t.IsScheduled() {
			m.prompt.Placeholder = task.FormatClock(t.Start.In(m.location()))
		} else {
			m.prompt.Placeholder = "HH:MM"
		}
		return m, m.prompt.Focus()

	case key.Matches(msg, m.keys.Copy):
		t := m.selected()
		if t == nil {
			return m, nil
		}
		if err := writeClipboard(m.describe(t)); err != nil {
			return m, func() tea.Msg { return commands.ErrMsg{Err: fmt.Errorf("copying: %w", err)} }
		}
		return m, commands.Status("Copied to clipboard")
	}

	return m, nil
}

// handlePromptKeys handles keys while typing a new start time.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.prompt.Blur()
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.prompt.Value())
		m.mode = ModeNormal
		m.prompt.Blur()
		if value == "" {
			return m, nil
		}
		start, err := dateutil.ParseClock(m.date, value)
		if err != nil {
			return m, commands.Status(fmt.Sprintf("Invalid time %q, use HH:MM", value))
		}
		return m.moveTo(start)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) goToDay(date time.Time) (tea.Model, tea.Cmd) {
	m.date = date
	m.cursor = 0
	m.rejected = nil
	m.loading = true
	return m, commands.LoadDay(m.ctx, m.repo, m.date)
}

// moveTo reschedules the selected task to start unless it would overlap
// an open task. A rejected move leaves the conflicts on screen.
func (m Model) moveTo(start time.Time) (tea.Model, tea.Cmd) {
	t := m.selected()
	if t == nil {
		return m, nil
	}

	report, err := m.searcher.Check(m.snapshot, start, t.EffectiveDuration(), t.ID)
	if err != nil {
		return m, func() tea.Msg { return commands.ErrMsg{Err: err} }
	}
	if report.HasConflicts() {
		m.rejected = report.Conflicts
		status := fmt.Sprintf("%s overlaps %d task(s)", task.NewInterval(start, t.EffectiveDuration()), len(report.Conflicts))
		if report.Resolved() {
			status += fmt.Sprintf("; next free start %s (press s)", task.FormatClock(report.Suggestion.Start.In(m.location())))
		}
		m.logger.Info("move rejected",
			zap.String("task", t.ID),
			zap.Time("start", start),
			zap.Int("conflicts", len(report.Conflicts)),
		)
		return m, commands.Status(status)
	}

	m.rejected = nil
	return m, commands.Reschedule(m.ctx, m.repo, t, start)
}

// moveToNextFreeSlot moves the selected task to the first free start at
// or after its current one. Unscheduled tasks search from the next study
// start of the shown day.
func (m Model) moveToNextFreeSlot() (tea.Model, tea.Cmd) {
	t := m.selected()
	if t == nil {
		return m, nil
	}
	if t.Completed {
		return m, commands.Status("Completed tasks cannot be moved")
	}

	now := m.nowFunc()
	var preferred time.Time
	switch {
	case t.IsScheduled():
		preferred = *t.Start
	case m.date.Equal(dateutil.TruncateToDay(now)):
		preferred = m.scheduler.NextStudyStart(now)
	default:
		preferred, _ = m.scheduler.Window(m.date)
	}

	s, err := m.searcher.SuggestSlotExcluding(m.snapshot, preferred, t.EffectiveDuration(), t.ID)
	if err != nil {
		return m, func() tea.Msg { return commands.ErrMsg{Err: err} }
	}
	if s.Exhausted {
		return m, commands.Status(fmt.Sprintf("No free slot within %d attempts", s.Attempts))
	}
	if t.IsScheduled() && !s.Moved(preferred) {
		m.rejected = nil
		return m, commands.Status("Already in a free slot")
	}

	m.rejected = nil
	return m, commands.Reschedule(m.ctx, m.repo, t, s.Start.In(m.location()))
}

// describe renders a task for the clipboard.
func (m Model) describe(t *task.Task) string {
	var b strings.Builder
	if t.IsScheduled() {
		start := t.Start.In(m.location())
		fmt.Fprintf(&b, "%s %s ", start.Format("Mon Jan 2"), task.NewInterval(start, t.EffectiveDuration()))
	}
	if t.Subject != "" {
		fmt.Fprintf(&b, "[%s] ", t.Subject)
	}
	b.WriteString(t.Title)
	return b.String()
}
