package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/studydesk/internal/config"
	"github.com/javiermolinar/studydesk/internal/conflict"
	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/llm"
	"github.com/javiermolinar/studydesk/internal/logging"
	"github.com/javiermolinar/studydesk/internal/scheduler"
	"github.com/javiermolinar/studydesk/internal/task"
	"github.com/javiermolinar/studydesk/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// ClientFactory builds an LLM client from the configured provider settings.
type ClientFactory func(provider, model, baseURL string) (llm.Client, error)

// App holds the CLI application state.
type App struct {
	repo       task.Repository
	config     *config.Config
	configPath string
	logger     *zap.Logger
	searcher   *conflict.Searcher
	scheduler  *scheduler.Scheduler
	now        func() time.Time
	newClient  ClientFactory
	agenda     func(ctx context.Context, opts tui.Options) error
	root       *cobra.Command
	noColor    bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the application logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.logger = logging.OrNop(l) }
}

// WithClock overrides the wall clock. The clock's location is the display
// location for every command.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithClientFactory overrides how LLM clients are created.
func WithClientFactory(f ClientFactory) Option {
	return func(a *App) { a.newClient = f }
}

// WithConfigPath sets the file shown and written by the config command.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

// NewApp creates a new CLI application with the given repository and config.
func NewApp(repo task.Repository, cfg *config.Config, opts ...Option) *App {
	a := &App{
		repo:       repo,
		config:     cfg,
		configPath: config.DefaultConfigPath(),
		logger:     zap.NewNop(),
		now:        time.Now,
		newClient:  llm.NewClient,
		agenda:     tui.Run,
		scheduler:  scheduler.New(cfg.Schedule.StudyDays, cfg.Schedule.DayStart, cfg.Schedule.DayEnd),
		searcher: conflict.NewSearcher(conflict.Options{
			Buffer:      cfg.Scheduler.Buffer(),
			MaxAttempts: cfg.Scheduler.MaxAttempts,
		}),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "studydesk",
		Short: "Plan study sessions without double-booking yourself",
		Long: `studydesk keeps your study tasks on a calendar and refuses to let
two open sessions overlap.

When a new or moved session collides with existing ones it lists every
conflict with the overlap in minutes and proposes the next free start.
Running studydesk with no command opens today's agenda.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				DisableColor()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.openAgenda(cmd.Context(), a.now())
		},
	}

	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.checkCmd())
	a.root.AddCommand(a.suggestCmd())
	a.root.AddCommand(a.rescheduleCmd())
	a.root.AddCommand(a.doneCmd())
	a.root.AddCommand(a.undoCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.planCmd())
	a.root.AddCommand(a.agendaCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "studydesk %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// snapshot returns every stored task. Conflict checks always run on the
// full snapshot so tasks crossing midnight are seen.
func (a *App) snapshot(ctx context.Context) ([]*task.Task, error) {
	tasks, err := a.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// findTask resolves a full ID or unique prefix.
func (a *App) findTask(ctx context.Context, ref string) (*task.Task, error) {
	return a.repo.FindTask(ctx, ref)
}

// duration applies the configured default to a zero --duration.
func (a *App) duration(minutes int) int {
	if minutes == 0 {
		return a.config.Scheduler.DefaultDuration
	}
	return minutes
}

// defaultStart is the preferred start when --start is omitted: the next
// study start for today, or the day start of a later date.
func (a *App) defaultStart(date string) (time.Time, error) {
	now := a.now()
	if date == "" {
		return a.scheduler.NextStudyStart(now), nil
	}
	day, err := dateutil.ParseRelativeDate(date, now, false)
	if err != nil {
		return time.Time{}, err
	}
	if day.Equal(dateutil.TruncateToDay(now)) {
		return a.scheduler.NextStudyStart(now), nil
	}
	start, _ := a.scheduler.Window(day)
	return start, nil
}

// resolveStart parses --date/--start, falling back to defaultStart.
func (a *App) resolveStart(date, clock string, allowPast bool) (time.Time, error) {
	if clock == "" {
		return a.defaultStart(date)
	}
	return dateutil.ParseDateTime(date, clock, a.now(), allowPast)
}

func (a *App) openAgenda(ctx context.Context, date time.Time) error {
	return a.agenda(ctx, tui.Options{
		Repo:      a.repo,
		Config:    a.config,
		Searcher:  a.searcher,
		Scheduler: a.scheduler,
		Logger:    a.logger,
		Date:      date,
		Now:       a.now,
	})
}

func (a *App) agendaCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Open the interactive day agenda",
		Example: `  studydesk agenda
  studydesk agenda --date=tomorrow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := dateutil.ParseRelativeDate(date, a.now(), true)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			return a.openAgenda(cmd.Context(), day)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to open (YYYY-MM-DD, today, tomorrow, monday...)")
	return cmd
}
