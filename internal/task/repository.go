package task

import (
	"context"
	"time"
)

// Repository defines the storage interface for tasks.
type Repository interface {
	// CreateTask adds a new task to the repository.
	// An empty ID is replaced with a fresh one.
	CreateTask(ctx context.Context, task *Task) error

	// CreateTasks adds multiple tasks in a single transaction.
	CreateTasks(ctx context.Context, tasks []*Task) error

	// GetTask retrieves a task by ID.
	// Returns ErrTaskNotFound if no task has that ID.
	GetTask(ctx context.Context, id string) (*Task, error)

	// FindTask retrieves a task by full ID or unique ID prefix.
	FindTask(ctx context.Context, ref string) (*Task, error)

	// ListTasks returns every task, scheduled ones ordered by start and
	// unscheduled ones last.
	ListTasks(ctx context.Context) ([]*Task, error)

	// ListTasksBetween returns scheduled tasks whose start is in [from, to).
	ListTasksBetween(ctx context.Context, from, to time.Time) ([]*Task, error)

	// Reschedule moves a task to a new start and duration.
	Reschedule(ctx context.Context, id string, start time.Time, duration int) error

	// SetCompleted marks a task as completed or open.
	SetCompleted(ctx context.Context, id string, completed bool) error

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id string) error

	// Close releases any resources held by the repository.
	Close() error
}
