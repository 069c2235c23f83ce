// Package conflict detects time conflicts between study tasks and searches
// for the next free slot for a new or rescheduled task.
//
// Every function in this package is pure: it reads the caller's task
// snapshot, never mutates it, and never consults the wall clock.
package conflict

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/studydesk/internal/task"
)

// Validation errors.
var (
	ErrInvalidDuration = errors.New("candidate duration out of range")
	ErrInvalidStart    = errors.New("candidate start must be a valid instant")
)

// Conflict is an existing task that overlaps a candidate interval.
type Conflict struct {
	Task           *task.Task
	OverlapMinutes int
}

// validateCandidate rejects degenerate candidates.
func validateCandidate(start time.Time, duration int) error {
	if start.IsZero() {
		return ErrInvalidStart
	}
	if duration <= 0 {
		return fmt.Errorf("%w: got %d, must be positive", ErrInvalidDuration, duration)
	}
	// Longer durations wrap around and end before they start.
	if int64(duration) > task.MaxMinutes || !start.Add(task.Minutes(duration)).After(start) {
		return fmt.Errorf("%w: %d minutes is too long", ErrInvalidDuration, duration)
	}
	return nil
}

// Detect returns every task that overlaps the candidate interval
// [start, start+duration), annotated with the overlap in minutes.
//
// Completed tasks, unscheduled tasks and the task whose ID equals
// excludeID are skipped. An empty excludeID skips nothing. Touching
// intervals are not conflicts. The result preserves input order and is
// empty when the candidate is free.
func Detect(tasks []*task.Task, start time.Time, duration int, excludeID string) ([]Conflict, error) {
	if err := validateCandidate(start, duration); err != nil {
		return nil, err
	}
	return detect(tasks, task.NewInterval(start, duration), excludeID), nil
}

func detect(tasks []*task.Task, candidate task.Interval, excludeID string) []Conflict {
	var conflicts []Conflict
	for _, t := range tasks {
		if t == nil || t.Completed {
			continue
		}
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		iv, ok := t.Interval()
		if !ok {
			continue
		}
		if !candidate.Overlaps(iv) {
			continue
		}
		// Sub-minute overlaps round to zero and are not reported.
		if m := candidate.OverlapMinutes(iv); m > 0 {
			conflicts = append(conflicts, Conflict{Task: t, OverlapMinutes: m})
		}
	}
	return conflicts
}

// HasConflict reports whether the candidate overlaps any task.
func HasConflict(tasks []*task.Task, start time.Time, duration int, excludeID string) (bool, error) {
	conflicts, err := Detect(tasks, start, duration, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// TotalOverlap sums the overlap minutes of a conflict set.
func TotalOverlap(conflicts []Conflict) int {
	var total int
	for _, c := range conflicts {
		total += c.OverlapMinutes
	}
	return total
}

// LatestEnd returns the latest end instant among the conflicting tasks.
// The zero time is returned for an empty set.
func LatestEnd(conflicts []Conflict) time.Time {
	var latest time.Time
	for _, c := range conflicts {
		if end := c.Task.End(); end.After(latest) {
			latest = end
		}
	}
	return latest
}
