// Package studyplan turns a free-form study goal into conflict-free study
// blocks. It coordinates the LLM, the slot searcher and the repository so
// both the CLI and the TUI can use it.
package studyplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/studydesk/internal/config"
	"github.com/javiermolinar/studydesk/internal/conflict"
	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/llm"
	"github.com/javiermolinar/studydesk/internal/logging"
	"github.com/javiermolinar/studydesk/internal/scheduler"
	"github.com/javiermolinar/studydesk/internal/task"
)

// ErrNoSession is returned by ContinuePlanning before any plan was requested.
var ErrNoSession = errors.New("no active planning session")

// ErrUnsaveable is returned by Save for results that still carry validation errors.
var ErrUnsaveable = errors.New("cannot save: result has validation errors")

const (
	contextHorizonDays = 28
	historyDays        = 14
)

// Planner orchestrates study planning.
type Planner struct {
	llmClient llm.Client
	repo      task.Repository
	config    *config.Config
	scheduler *scheduler.Scheduler
	searcher  *conflict.Searcher
	logger    *zap.Logger
	now       func() time.Time

	// Conversation state for interactive refinement.
	messages     []llm.Message
	lastResponse *llm.SuggestResponse
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the planner's logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) { p.logger = logging.OrNop(l) }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithSearcher overrides the slot search policy from config.
func WithSearcher(s *conflict.Searcher) Option {
	return func(p *Planner) { p.searcher = s }
}

// New creates a new Planner with the given dependencies.
func New(client llm.Client, cfg *config.Config, repo task.Repository, opts ...Option) *Planner {
	p := &Planner{
		llmClient: client,
		repo:      repo,
		config:    cfg,
		scheduler: scheduler.New(cfg.Schedule.StudyDays, cfg.Schedule.DayStart, cfg.Schedule.DayEnd),
		searcher: conflict.NewSearcher(conflict.Options{
			Buffer:      cfg.Scheduler.Buffer(),
			MaxAttempts: cfg.Scheduler.MaxAttempts,
		}),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlanRequest contains the input for planning.
type PlanRequest struct {
	Goal string
}

// PlannedTask is a suggested block after placement.
type PlannedTask struct {
	Title     string
	Subject   string
	Duration  int       // minutes
	Preferred time.Time // start the model asked for
	Start     time.Time // start after conflict resolution
	Exhausted bool      // search bound hit; Start may still overlap

	// OutsideHours is set when the placed block does not sit inside the
	// configured study hours of a study day.
	OutsideHours bool
}

// Moved reports whether placement shifted the block.
func (p PlannedTask) Moved() bool {
	return !p.Start.Equal(p.Preferred)
}

// End returns the placed end instant.
func (p PlannedTask) End() time.Time {
	return p.Start.Add(task.Minutes(p.Duration))
}

// PlanResult contains the result of a planning operation.
type PlanResult struct {
	// TasksByDate groups placed tasks by local date (YYYY-MM-DD).
	TasksByDate map[string][]PlannedTask

	// SortedDates contains the dates in chronological order for display.
	SortedDates []string

	Notes []string

	// ValidationErrors is populated when retries were exhausted.
	ValidationErrors []ValidationError

	// Attempts is the number of model calls made.
	Attempts int
}

// TotalTasks returns the number of planned tasks across all days.
func (r *PlanResult) TotalTasks() int {
	total := 0
	for _, tasks := range r.TasksByDate {
		total += len(tasks)
	}
	return total
}

// TotalMinutes returns the planned study time across all days.
func (r *PlanResult) TotalMinutes() int {
	total := 0
	for _, tasks := range r.TasksByDate {
		for _, t := range tasks {
			total += t.Duration
		}
	}
	return total
}

// Tasks returns every planned task in start order.
func (r *PlanResult) Tasks() []PlannedTask {
	var all []PlannedTask
	for _, date := range r.SortedDates {
		all = append(all, r.TasksByDate[date]...)
	}
	return all
}

// HasValidationErrors returns true if there are unresolved validation errors.
func (r *PlanResult) HasValidationErrors() bool {
	return len(r.ValidationErrors) > 0
}

// PlanWithRetry asks the model for a plan, validates it and retries with the
// validation errors as feedback. When maxRetries is exhausted the result is
// returned with ValidationErrors populated and no placement.
func (p *Planner) PlanWithRetry(ctx context.Context, req PlanRequest, maxRetries int) (*PlanResult, error) {
	now := p.now()

	upcoming, err := p.fetchUpcoming(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("fetching upcoming tasks: %w", err)
	}
	recent, err := p.fetchRecent(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("fetching recent tasks: %w", err)
	}

	llmPlanner := llm.NewPlanner(p.llmClient)
	p.messages = llmPlanner.BuildInitialMessages(llm.SuggestRequest{
		Goal:            req.Goal,
		Now:             now,
		StudyDays:       p.config.Schedule.StudyDays,
		DayStart:        p.config.Schedule.DayStart,
		DayEnd:          p.config.Schedule.DayEnd,
		DefaultDuration: p.config.Scheduler.DefaultDuration,
		Existing:        toExisting(upcoming, now.Location()),
		Recent:          toExisting(recent, now.Location()),
	})
	p.lastResponse = nil

	return p.run(ctx, llmPlanner, now, maxRetries)
}

// ContinuePlanning adds feedback to the conversation and replans.
func (p *Planner) ContinuePlanning(ctx context.Context, feedback string, maxRetries int) (*PlanResult, error) {
	if len(p.messages) == 0 {
		return nil, ErrNoSession
	}

	p.appendAssistant(p.lastResponse)
	p.messages = append(p.messages, llm.Message{Role: llm.RoleUser, Content: feedback})

	return p.run(ctx, llm.NewPlanner(p.llmClient), p.now(), maxRetries)
}

func (p *Planner) run(ctx context.Context, llmPlanner *llm.Planner, now time.Time, maxRetries int) (*PlanResult, error) {
	maxRetries = max(maxRetries, 0)
	validator := NewValidator(now)

	var lastValidation ValidationResult
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := llmPlanner.SuggestWithMessages(ctx, p.messages)
		if err != nil {
			return nil, fmt.Errorf("LLM planning (attempt %d): %w", attempt+1, err)
		}
		p.lastResponse = resp

		lastValidation = validator.Validate(resp.Tasks)
		if lastValidation.Valid {
			result, err := p.place(ctx, resp, now)
			if err != nil {
				return nil, err
			}
			result.Attempts = attempt + 1
			return result, nil
		}

		p.logger.Debug("study plan rejected",
			zap.Int("attempt", attempt+1),
			zap.Int("errors", len(lastValidation.Errors)),
		)

		if attempt < maxRetries {
			p.appendAssistant(resp)
			p.messages = append(p.messages, llm.Message{
				Role:    llm.RoleUser,
				Content: lastValidation.FormatErrors(),
			})
		}
	}

	return &PlanResult{
		TasksByDate:      map[string][]PlannedTask{},
		Notes:            p.lastResponse.Notes,
		ValidationErrors: lastValidation.Errors,
		Attempts:         maxRetries + 1,
	}, nil
}

func (p *Planner) appendAssistant(resp *llm.SuggestResponse) {
	if resp == nil {
		return
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return
	}
	p.messages = append(p.messages, llm.Message{Role: llm.RoleAssistant, Content: string(respJSON)})
}

// place moves every suggestion to its next free slot. Blocks are placed in
// preferred-start order and each placed block joins the snapshot, so the
// plan never collides with itself.
func (p *Planner) place(ctx context.Context, resp *llm.SuggestResponse, now time.Time) (*PlanResult, error) {
	snapshot, err := p.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	suggested := make([]PlannedTask, 0, len(resp.Tasks))
	for _, st := range resp.Tasks {
		preferred, err := st.StartIn(now.Location())
		if err != nil {
			return nil, err
		}
		suggested = append(suggested, PlannedTask{
			Title:     st.Title,
			Subject:   st.Subject,
			Duration:  st.DurationMinutes,
			Preferred: preferred,
		})
	}
	sort.SliceStable(suggested, func(i, j int) bool {
		return suggested[i].Preferred.Before(suggested[j].Preferred)
	})

	result := &PlanResult{
		TasksByDate: make(map[string][]PlannedTask),
		Notes:       resp.Notes,
	}

	for _, pt := range suggested {
		s, err := p.searcher.SuggestSlot(snapshot, pt.Preferred, pt.Duration)
		if err != nil {
			return nil, fmt.Errorf("placing %q: %w", pt.Title, err)
		}
		pt.Start = s.Start
		pt.Exhausted = s.Exhausted

		local := pt.Start.In(now.Location())
		pt.OutsideHours = !p.scheduler.IsWithinStudyHours(local) || !p.scheduler.Fits(local, pt.Duration)

		if pt.Moved() {
			p.logger.Debug("study block moved",
				zap.String("title", pt.Title),
				zap.Time("preferred", pt.Preferred),
				zap.Time("start", pt.Start),
				zap.Int("attempts", s.Attempts),
			)
		}
		if pt.Exhausted {
			p.logger.Warn("no free slot found within search bound", zap.String("title", pt.Title))
		}

		start := pt.Start
		snapshot = append(snapshot, &task.Task{ID: task.NewID(), Title: pt.Title, Start: &start, Duration: pt.Duration})

		key := dateutil.TruncateToDay(local).Format("2006-01-02")
		result.TasksByDate[key] = append(result.TasksByDate[key], pt)
	}

	for date := range result.TasksByDate {
		result.SortedDates = append(result.SortedDates, date)
	}
	sort.Strings(result.SortedDates)
	for _, date := range result.SortedDates {
		day := result.TasksByDate[date]
		sort.SliceStable(day, func(i, j int) bool { return day[i].Start.Before(day[j].Start) })
	}

	return result, nil
}

// Save persists the planned tasks to the repository in one transaction.
func (p *Planner) Save(ctx context.Context, result *PlanResult) ([]*task.Task, error) {
	if result.HasValidationErrors() {
		return nil, ErrUnsaveable
	}

	now := p.now()
	var tasks []*task.Task
	for _, pt := range result.Tasks() {
		start := pt.Start
		t, err := task.New(pt.Title, pt.Subject, &start, pt.Duration, now)
		if err != nil {
			return nil, fmt.Errorf("converting %q: %w", pt.Title, err)
		}
		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		return nil, nil
	}

	if err := p.repo.CreateTasks(ctx, tasks); err != nil {
		return nil, err
	}
	p.logger.Info("study plan saved", zap.Int("tasks", len(tasks)))
	return tasks, nil
}

// fetchUpcoming retrieves scheduled tasks from today for the next four weeks.
func (p *Planner) fetchUpcoming(ctx context.Context, now time.Time) ([]*task.Task, error) {
	startOfDay := dateutil.TruncateToDay(now)
	return p.repo.ListTasksBetween(ctx, startOfDay, startOfDay.AddDate(0, 0, contextHorizonDays))
}

// fetchRecent retrieves the last two weeks of tasks for history context.
func (p *Planner) fetchRecent(ctx context.Context, now time.Time) ([]*task.Task, error) {
	startOfDay := dateutil.TruncateToDay(now)
	return p.repo.ListTasksBetween(ctx, startOfDay.AddDate(0, 0, -historyDays), startOfDay)
}

func toExisting(tasks []*task.Task, loc *time.Location) []llm.ExistingTask {
	result := make([]llm.ExistingTask, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsScheduled() {
			continue
		}
		result = append(result, llm.ExistingTask{
			Start:   t.Start.In(loc),
			End:     t.End().In(loc),
			Title:   t.Title,
			Subject: t.Subject,
		})
	}
	return result
}
