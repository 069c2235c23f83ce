package conflict

import (
	"time"

	"github.com/javiermolinar/studydesk/internal/task"
)

// Report describes a candidate interval against a task snapshot.
type Report struct {
	Start     time.Time
	Duration  int
	Conflicts []Conflict
	// Suggestion is set only when Conflicts is non-empty.
	Suggestion *Suggestion
	// Residual lists the conflicts still overlapping the suggested start.
	// It is empty unless the search bound was exhausted.
	Residual []Conflict
}

// HasConflicts reports whether the candidate overlaps any task.
func (r Report) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Resolved reports whether the suggestion, if any, is conflict-free.
func (r Report) Resolved() bool {
	return r.Suggestion != nil && len(r.Residual) == 0
}

// Check runs the detector on the candidate and, when it conflicts, searches
// for the next free start. The task with excludeID is ignored in both steps.
func (s *Searcher) Check(tasks []*task.Task, start time.Time, duration int, excludeID string) (Report, error) {
	conflicts, err := Detect(tasks, start, duration, excludeID)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Start:     start,
		Duration:  duration,
		Conflicts: conflicts,
	}
	if len(conflicts) == 0 {
		return report, nil
	}

	suggestion, err := s.SuggestSlotExcluding(tasks, start, duration, excludeID)
	if err != nil {
		return Report{}, err
	}
	report.Suggestion = &suggestion

	if suggestion.Exhausted {
		report.Residual = detect(tasks, task.NewInterval(suggestion.Start, duration), excludeID)
	}
	return report, nil
}
