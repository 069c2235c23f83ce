package task

import (
	"slices"
	"time"
)

// Day holds the scheduled tasks starting on a single calendar day.
type Day struct {
	Date  time.Time
	tasks []*Task // sorted by Start

	// snapshot holds the tasks the day's own tasks are checked against,
	// so a session running past midnight is seen by both days.
	snapshot []*Task
}

// NewDay creates a Day for the given date.
func NewDay(date time.Time) *Day {
	return &Day{
		Date:  truncateToDay(date),
		tasks: make([]*Task, 0),
	}
}

// NewDayWithTasks creates a Day from a slice of tasks, keeping only
// scheduled tasks whose start falls on date (in date's location). The
// whole slice is kept as the day's snapshot for conflict checks.
func NewDayWithTasks(date time.Time, tasks []*Task) *Day {
	d := NewDay(date)
	for _, t := range tasks {
		d.AddTask(t)
	}
	d.SetSnapshot(tasks)
	return d
}

// SetSnapshot sets the tasks ConflictPairs compares the day's tasks
// against, in addition to each other. Pass every known task so that
// overlaps with sessions starting on another day are found.
func (d *Day) SetSnapshot(tasks []*Task) {
	d.snapshot = tasks
}

// Tasks returns a copy of the task slice.
func (d *Day) Tasks() []*Task {
	result := make([]*Task, len(d.tasks))
	copy(result, d.tasks)
	return result
}

// AddTask adds a task to the day, maintaining sorted order by start time.
// Returns false if the task is nil, unscheduled, or starts on another day.
func (d *Day) AddTask(t *Task) bool {
	if t == nil || !t.IsScheduled() {
		return false
	}
	if !d.Includes(*t.Start) {
		return false
	}

	d.tasks = append(d.tasks, t)
	slices.SortStableFunc(d.tasks, func(a, b *Task) int {
		return a.Start.Compare(*b.Start)
	})
	return true
}

// Includes returns true if the instant falls on this day.
func (d *Day) Includes(t time.Time) bool {
	local := t.In(d.Date.Location())
	return !local.Before(d.Date) && local.Before(d.Date.AddDate(0, 0, 1))
}

// RemoveTask removes a task from the day by ID.
// Returns the removed task, or nil if not found.
func (d *Day) RemoveTask(id string) *Task {
	for i, t := range d.tasks {
		if t.ID == id {
			d.tasks = slices.Delete(d.tasks, i, i+1)
			return t
		}
	}
	return nil
}

// Len returns the number of tasks in the day.
func (d *Day) Len() int {
	return len(d.tasks)
}

// ConflictPair is a pair of open tasks whose intervals overlap.
type ConflictPair struct {
	First          *Task
	Second         *Task
	OverlapMinutes int
}

// ConflictPairs returns every pair of open tasks that overlap where at
// least one task starts on the day. Pairs are checked against the day's
// tasks and its snapshot, and each pair is reported once with the
// earlier start first. Completed tasks never take part in a pair.
func (d *Day) ConflictPairs() []ConflictPair {
	others := make([]*Task, 0, len(d.tasks)+len(d.snapshot))
	others = append(others, d.tasks...)
	others = append(others, d.snapshot...)

	seen := make(map[[2]string]bool)
	var pairs []ConflictPair
	for _, a := range d.tasks {
		ia, ok := a.Interval()
		if !ok || a.Completed {
			continue
		}
		for _, b := range others {
			if b == nil || b == a || b.ID == a.ID || b.Completed {
				continue
			}
			ib, ok := b.Interval()
			if !ok {
				continue
			}
			m := ia.OverlapMinutes(ib)
			if m <= 0 {
				continue
			}
			key := pairKey(a, b)
			if seen[key] {
				continue
			}
			seen[key] = true

			first, second := a, b
			if b.Start.Before(*a.Start) {
				first, second = b, a
			}
			pairs = append(pairs, ConflictPair{First: first, Second: second, OverlapMinutes: m})
		}
	}
	slices.SortStableFunc(pairs, func(x, y ConflictPair) int {
		return x.First.Start.Compare(*y.First.Start)
	})
	return pairs
}

// pairKey identifies a pair of tasks independently of their order.
func pairKey(a, b *Task) [2]string {
	return [2]string{min(a.ID, b.ID), max(a.ID, b.ID)}
}

// Conflicting returns the IDs of tasks taking part in any ConflictPair.
func (d *Day) Conflicting() map[string]bool {
	ids := make(map[string]bool)
	for _, p := range d.ConflictPairs() {
		ids[p.First.ID] = true
		ids[p.Second.ID] = true
	}
	return ids
}

// DayStats holds statistics for a single day.
type DayStats struct {
	PlannedMinutes   int
	CompletedMinutes int
	TotalTasks       int
	CompletedTasks   int
}

// OpenMinutes returns the minutes still to study.
func (s DayStats) OpenMinutes() int {
	return s.PlannedMinutes - s.CompletedMinutes
}

// CompletedPercent returns the share of planned minutes already completed.
func (s DayStats) CompletedPercent() int {
	if s.PlannedMinutes == 0 {
		return 0
	}
	return (s.CompletedMinutes * 100) / s.PlannedMinutes
}

// Stats calculates statistics for the day.
func (d *Day) Stats() DayStats {
	var stats DayStats
	for _, t := range d.tasks {
		minutes := t.EffectiveDuration()
		stats.TotalTasks++
		stats.PlannedMinutes += minutes
		if t.Completed {
			stats.CompletedTasks++
			stats.CompletedMinutes += minutes
		}
	}
	return stats
}

// truncateToDay removes the time component from a time.Time.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
