// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/studydesk/internal/task"
)

// DayLoadedMsg is sent when the task snapshot for a day is loaded.
type DayLoadedMsg struct {
	Date time.Time
	// Tasks is the full snapshot, not only the day's tasks, so conflicts
	// with tasks on neighbouring days are visible.
	Tasks []*task.Task
}

// TaskUpdatedMsg is sent after a task was changed in the repository.
type TaskUpdatedMsg struct {
	Status string
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadDay loads every task and tags the result with date.
func LoadDay(ctx context.Context, repo task.Repository, date time.Time) tea.Cmd {
	return func() tea.Msg {
		tasks, err := repo.ListTasks(ctx)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading tasks: %w", err)}
		}
		return DayLoadedMsg{Date: date, Tasks: tasks}
	}
}

// SetCompleted marks a task as completed or open.
func SetCompleted(ctx context.Context, repo task.Repository, t *task.Task, completed bool) tea.Cmd {
	return func() tea.Msg {
		if err := repo.SetCompleted(ctx, t.ID, completed); err != nil {
			return ErrMsg{Err: err}
		}
		verb := "Reopened"
		if completed {
			verb = "Completed"
		}
		return TaskUpdatedMsg{Status: fmt.Sprintf("%s %s", verb, t.Title)}
	}
}

// Reschedule moves a task to start, keeping its duration.
func Reschedule(ctx context.Context, repo task.Repository, t *task.Task, start time.Time) tea.Cmd {
	return func() tea.Msg {
		if err := repo.Reschedule(ctx, t.ID, start, t.EffectiveDuration()); err != nil {
			return ErrMsg{Err: err}
		}
		slot := task.NewInterval(start, t.EffectiveDuration())
		return TaskUpdatedMsg{Status: fmt.Sprintf("Moved %s to %s", t.Title, slot)}
	}
}

// Status returns a command that shows msg in the status line.
func Status(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsgCmd{Msg: msg}
	}
}
