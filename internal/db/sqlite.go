// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/studydesk/internal/logging"
	"github.com/javiermolinar/studydesk/internal/task"
)

// timeLayout stores instants in UTC with whole seconds. formatTime drops
// any fraction, so every stored value has the same width and sorts
// lexically.
const timeLayout = time.RFC3339

const taskColumns = `id, title, subject, start_at, duration_minutes, completed, created_at`

// SQLite implements task.Repository using SQLite.
type SQLite struct {
	db     *sql.DB
	logger *zap.Logger
}

// Option configures the SQLite repository.
type Option func(*SQLite)

// WithLogger sets the logger used for data warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLite) {
		s.logger = logging.OrNop(l)
	}
}

// New creates a new SQLite repository and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Debug("database opened", zap.String("path", path))
	return s, nil
}

// CreateTask adds a new task to the repository.
// Conflict checking is the caller's decision; the store accepts overlaps.
func (s *SQLite) CreateTask(ctx context.Context, t *task.Task) error {
	if err := insertTask(ctx, s.db, t); err != nil {
		return err
	}
	s.logger.Debug("task created", zap.String("task_id", t.ID), zap.String("title", t.Title))
	return nil
}

// CreateTasks adds multiple tasks in a batch using a transaction.
func (s *SQLite) CreateTasks(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tasks {
		if err := insertTask(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("tasks created", zap.Int("count", len(tasks)))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTask(ctx context.Context, db execer, t *task.Task) error {
	if t == nil {
		return errors.New("inserting task: nil task")
	}
	if strings.TrimSpace(t.Title) == "" {
		return task.ErrEmptyTitle
	}
	if t.Duration < 0 {
		return task.ErrNegativeDuration
	}
	if t.ID == "" {
		t.ID = task.NewID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Subject,
		formatStart(t.Start),
		t.Duration,
		boolToInt(t.Completed),
		formatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task %q: %w", t.Title, err)
	}
	return nil
}

// GetTask retrieves a task by ID.
// Returns task.ErrTaskNotFound if no task has that ID.
func (s *SQLite) GetTask(ctx context.Context, id string) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := s.scanTask(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// FindTask resolves a full ID or a unique ID prefix, as shown by the CLI.
func (s *SQLite) FindTask(ctx context.Context, ref string) (*task.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty id", task.ErrTaskNotFound)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`
	rows, err := s.db.QueryContext(ctx, query, ref, escapeLike(ref)+"%")
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	tasks, err := s.collect(rows)
	if err != nil {
		return nil, err
	}

	switch len(tasks) {
	case 0:
		return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, ref)
	case 1:
		return tasks[0], nil
	default:
		for _, t := range tasks {
			if t.ID == ref {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, ref)
	}
}

// ErrAmbiguousID is returned when an ID prefix matches several tasks.
var ErrAmbiguousID = errors.New("id prefix matches more than one task")

// ListTasks returns every task, scheduled ones ordered by start and
// unscheduled ones last.
func (s *SQLite) ListTasks(ctx context.Context) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		ORDER BY start_at IS NULL, start_at, created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return s.collect(rows)
}

// ListTasksBetween returns scheduled tasks whose start is in [from, to).
// Bounds are compared at whole-second precision, like stored starts.
func (s *SQLite) ListTasksBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE start_at >= ? AND start_at < ?
		ORDER BY start_at, created_at
	`

	rows, err := s.db.QueryContext(ctx, query,
		formatTime(from),
		formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	tasks, err := s.collect(rows)
	if err != nil {
		return nil, err
	}

	// Rows whose start failed to parse come back unscheduled; drop them.
	result := tasks[:0]
	for _, t := range tasks {
		if t.IsScheduled() {
			result = append(result, t)
		}
	}
	return result, nil
}

// Reschedule moves a task to a new start and duration.
func (s *SQLite) Reschedule(ctx context.Context, id string, start time.Time, duration int) error {
	if start.IsZero() {
		return errors.New("rescheduling task: start must be set")
	}
	if duration < 0 {
		return task.ErrNegativeDuration
	}

	query := `UPDATE tasks SET start_at = ?, duration_minutes = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, formatStart(&start), duration, id)
	if err != nil {
		return fmt.Errorf("rescheduling task: %w", err)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}

	s.logger.Debug("task rescheduled",
		zap.String("task_id", id),
		zap.Time("start", start),
		zap.Int("duration", duration),
	)
	return nil
}

// SetCompleted marks a task as completed or open.
func (s *SQLite) SetCompleted(ctx context.Context, id string, completed bool) error {
	query := `UPDATE tasks SET completed = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, boolToInt(completed), id)
	if err != nil {
		return fmt.Errorf("setting task completion: %w", err)
	}
	return requireRow(result, id)
}

// DeleteTask removes a task.
func (s *SQLite) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireRow(result, id)
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row. A start that cannot be parsed leaves the
// task unscheduled rather than failing the whole read.
func (s *SQLite) scanTask(row rowScanner) (*task.Task, error) {
	var (
		t         task.Task
		startAt   sql.NullString
		completed int
		createdAt string
	)

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Subject,
		&startAt,
		&t.Duration,
		&completed,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	t.Completed = completed != 0

	if startAt.Valid && strings.TrimSpace(startAt.String) != "" {
		start, err := time.Parse(timeLayout, startAt.String)
		if err != nil {
			s.logger.Warn("ignoring unparseable task start",
				zap.String("task_id", t.ID),
				zap.String("start_at", startAt.String),
				zap.Error(err),
			)
		} else {
			t.Start = &start
		}
	}

	t.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		s.logger.Warn("ignoring unparseable created_at",
			zap.String("task_id", t.ID),
			zap.String("created_at", createdAt),
		)
		t.CreatedAt = time.Time{}
	}

	return &t, nil
}

func (s *SQLite) collect(rows *sql.Rows) ([]*task.Task, error) {
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	for rows.Next() {
		t, err := s.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, nil
}

func formatStart(start *time.Time) any {
	if start == nil || start.IsZero() {
		return nil
	}
	return formatTime(*start)
}

// formatTime formats t for storage, truncated to the second.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
