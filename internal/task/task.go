// Package task defines the core domain types for studydesk.
package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDuration is the duration in minutes assumed for tasks without one.
const DefaultDuration = 30

// Validation errors.
var (
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrNegativeDuration = errors.New("duration cannot be negative")
	ErrDurationTooLong  = errors.New("duration is too long")
)

// Domain errors.
var (
	ErrTimeBlockOverlap = errors.New("time block overlaps with existing task")
	ErrTaskNotFound     = errors.New("task not found")
)

// Task represents a study task, optionally placed on the calendar.
type Task struct {
	ID        string
	Title     string
	Subject   string
	Start     *time.Time // nil means unscheduled
	Duration  int        // minutes; <= 0 means DefaultDuration
	Completed bool
	CreatedAt time.Time
}

// NewID returns a fresh opaque task identity.
func NewID() string {
	return uuid.NewString()
}

// New creates a new Task with validation.
// start may be nil to create an unscheduled task.
// duration is in minutes; zero selects DefaultDuration.
func New(title, subject string, start *time.Time, duration int, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if duration < 0 {
		return nil, ErrNegativeDuration
	}
	if int64(duration) > MaxMinutes {
		return nil, ErrDurationTooLong
	}
	if duration == 0 {
		duration = DefaultDuration
	}

	var s *time.Time
	if start != nil {
		v := *start
		s = &v
	}

	return &Task{
		ID:        NewID(),
		Title:     title,
		Subject:   strings.TrimSpace(subject),
		Start:     s,
		Duration:  duration,
		CreatedAt: now,
	}, nil
}

// IsScheduled returns true if the task has a start instant.
func (t *Task) IsScheduled() bool {
	return t.Start != nil && !t.Start.IsZero()
}

// IsOpen returns true if the task still takes up calendar time:
// scheduled and not completed.
func (t *Task) IsOpen() bool {
	return t.IsScheduled() && !t.Completed
}

// EffectiveDuration returns the duration in minutes, applying DefaultDuration
// when the stored value is missing.
func (t *Task) EffectiveDuration() int {
	if t.Duration <= 0 {
		return DefaultDuration
	}
	return t.Duration
}

// End returns the derived end instant. The zero time is returned for
// unscheduled tasks.
func (t *Task) End() time.Time {
	if !t.IsScheduled() {
		return time.Time{}
	}
	return t.Start.Add(Minutes(t.EffectiveDuration()))
}

// Interval returns the task's half-open time span.
// ok is false when the task is unscheduled.
func (t *Task) Interval() (iv Interval, ok bool) {
	if !t.IsScheduled() {
		return Interval{}, false
	}
	return NewInterval(*t.Start, t.EffectiveDuration()), true
}

// IsPast returns true if the task's end is at or before now.
func (t *Task) IsPast(now time.Time) bool {
	if !t.IsScheduled() {
		return false
	}
	return !now.Before(t.End())
}

// ShortID returns the first block of the identity for display.
func (t *Task) ShortID() string {
	if i := strings.IndexByte(t.ID, '-'); i > 0 {
		return t.ID[:i]
	}
	return t.ID
}
