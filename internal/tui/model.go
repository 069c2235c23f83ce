package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/studydesk/internal/config"
	"github.com/javiermolinar/studydesk/internal/conflict"
	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/logging"
	"github.com/javiermolinar/studydesk/internal/scheduler"
	"github.com/javiermolinar/studydesk/internal/task"
	"github.com/javiermolinar/studydesk/internal/tui/commands"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt      // Typing a new start time
)

const statusTimeout = 3 * time.Second

// Options configures the agenda.
type Options struct {
	Repo      task.Repository
	Config    *config.Config
	Searcher  *conflict.Searcher
	Scheduler *scheduler.Scheduler
	Logger    *zap.Logger
	// Date is the day shown first. Zero means today.
	Date time.Time
	// Now is the wall clock. Its location is the display location.
	Now func() time.Time
}

// Model is the main TUI model.
type Model struct {
	// Dependencies
	ctx       context.Context
	repo      task.Repository
	searcher  *conflict.Searcher
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
	nowFunc   func() time.Time

	styles *Styles
	keys   keyMap
	help   help.Model
	prompt textinput.Model

	// State
	date        time.Time    // Midnight of the shown day
	snapshot    []*task.Task // Every stored task
	tasks       []*task.Task // The day's tasks, then unscheduled ones
	conflicting map[string]bool
	cursor      int
	mode        Mode
	loading     bool

	// Conflicts that caused the last change to be rejected
	rejected []conflict.Conflict

	statusMsg  string
	statusTime time.Time

	width  int
	height int
	err    error
}

// New creates a new TUI model.
func New(ctx context.Context, opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	searcher := opts.Searcher
	if searcher == nil {
		searcher = conflict.NewSearcher(conflict.Options{
			Buffer:      cfg.Scheduler.Buffer(),
			MaxAttempts: cfg.Scheduler.MaxAttempts,
		})
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = scheduler.New(cfg.Schedule.StudyDays, cfg.Schedule.DayStart, cfg.Schedule.DayEnd)
	}

	date := opts.Date
	if date.IsZero() {
		date = now()
	}

	prompt := textinput.New()
	prompt.Placeholder = "HH:MM"
	prompt.CharLimit = 5
	prompt.Prompt = "New start: "

	return Model{
		ctx:         ctx,
		repo:        opts.Repo,
		searcher:    searcher,
		scheduler:   sched,
		logger:      logging.OrNop(opts.Logger),
		nowFunc:     now,
		styles:      NewStyles(cfg.UI.Theme),
		keys:        defaultKeyMap(),
		help:        help.New(),
		prompt:      prompt,
		date:        dateutil.TruncateToDay(date.In(now().Location())),
		conflicting: map[string]bool{},
		mode:        ModeNormal,
		loading:     true,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return commands.LoadDay(m.ctx, m.repo, m.date)
}

// location is the display location.
func (m Model) location() *time.Location {
	return m.nowFunc().Location()
}

// selected returns the task under the cursor, or nil.
func (m Model) selected() *task.Task {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return nil
	}
	return m.tasks[m.cursor]
}

// setSnapshot rebuilds the day's rows and conflict markers from a fresh
// snapshot, keeping the cursor on the same task when possible.
func (m *Model) setSnapshot(tasks []*task.Task) {
	var selectedID string
	if t := m.selected(); t != nil {
		selectedID = t.ID
	}

	m.snapshot = tasks
	day := task.NewDayWithTasks(m.date, tasks)
	m.tasks = day.Tasks()
	for _, t := range tasks {
		if !t.IsScheduled() {
			m.tasks = append(m.tasks, t)
		}
	}

	// Check against the whole snapshot so a task crossing midnight still
	// marks the tasks it overlaps on this day.
	m.conflicting = make(map[string]bool)
	for _, t := range day.Tasks() {
		if !t.IsOpen() {
			continue
		}
		clash, err := conflict.HasConflict(tasks, *t.Start, t.EffectiveDuration(), t.ID)
		if err == nil && clash {
			m.conflicting[t.ID] = true
		}
	}

	m.cursor = 0
	for i, t := range m.tasks {
		if t.ID == selectedID {
			m.cursor = i
			break
		}
	}
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
