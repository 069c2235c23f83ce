package task

import (
	"sort"
	"time"
)

// Week holds 7 days starting from Monday.
type Week struct {
	StartDate time.Time // Monday of the week
	Days      [7]*Day   // Monday (0) through Sunday (6)
}

// NewWeek creates a Week starting from the Monday of the given date.
func NewWeek(date time.Time) *Week {
	monday := startOfWeek(date)
	w := &Week{StartDate: monday}

	for i := range 7 {
		w.Days[i] = NewDay(monday.AddDate(0, 0, i))
	}

	return w
}

// NewWeekFromTasks creates a Week and distributes scheduled tasks to the day
// they start on. Tasks outside the week are not listed but still count
// for conflicts with the week's tasks, so pass the full snapshot.
func NewWeekFromTasks(date time.Time, tasks []*Task) *Week {
	w := NewWeek(date)
	for _, day := range w.Days {
		day.SetSnapshot(tasks)
	}

	for _, t := range tasks {
		if !t.IsScheduled() {
			continue
		}
		if day := w.DayByDate(*t.Start); day != nil {
			day.AddTask(t)
		}
	}

	return w
}

// Day returns the Day for the given weekday (0=Monday, 6=Sunday).
// Returns nil if weekday is out of range.
func (w *Week) Day(weekday int) *Day {
	if weekday < 0 || weekday > 6 {
		return nil
	}
	return w.Days[weekday]
}

// DayByDate returns the Day containing the instant, nil if not in this week.
func (w *Week) DayByDate(t time.Time) *Day {
	for _, day := range w.Days {
		if day.Includes(t) {
			return day
		}
	}
	return nil
}

// AllTasks returns all tasks across all days, sorted by start.
func (w *Week) AllTasks() []*Task {
	var result []*Task
	for _, day := range w.Days {
		result = append(result, day.Tasks()...)
	}
	return result
}

// EndDate returns the Sunday of the week.
func (w *Week) EndDate() time.Time {
	return w.StartDate.AddDate(0, 0, 6)
}

// SubjectTotal is the study time planned for one subject.
type SubjectTotal struct {
	Subject          string
	PlannedMinutes   int
	CompletedMinutes int
}

// WeekStats holds aggregated statistics for the week.
type WeekStats struct {
	PlannedMinutes   int
	CompletedMinutes int
	TotalTasks       int
	CompletedTasks   int
	Conflicts        int // overlapping pairs of open tasks
	DayStats         [7]DayStats
	Subjects         []SubjectTotal // sorted by planned minutes, descending
}

// CompletedPercent returns the share of planned minutes already completed.
func (s WeekStats) CompletedPercent() int {
	if s.PlannedMinutes == 0 {
		return 0
	}
	return (s.CompletedMinutes * 100) / s.PlannedMinutes
}

// BestDay returns the weekday (0=Monday) with the most completed minutes.
// weekday is -1 when nothing was completed.
func (s WeekStats) BestDay() (weekday int, minutes int) {
	weekday = -1
	for i, ds := range s.DayStats {
		if ds.CompletedMinutes > minutes {
			minutes = ds.CompletedMinutes
			weekday = i
		}
	}
	return weekday, minutes
}

// Stats calculates statistics for the week.
func (w *Week) Stats() WeekStats {
	var stats WeekStats
	bySubject := make(map[string]*SubjectTotal)
	// A pair crossing midnight shows up on both days.
	pairs := make(map[[2]string]bool)

	for i, day := range w.Days {
		ds := day.Stats()
		stats.DayStats[i] = ds
		stats.PlannedMinutes += ds.PlannedMinutes
		stats.CompletedMinutes += ds.CompletedMinutes
		stats.TotalTasks += ds.TotalTasks
		stats.CompletedTasks += ds.CompletedTasks
		for _, p := range day.ConflictPairs() {
			pairs[pairKey(p.First, p.Second)] = true
		}

		for _, t := range day.Tasks() {
			st := bySubject[t.Subject]
			if st == nil {
				st = &SubjectTotal{Subject: t.Subject}
				bySubject[t.Subject] = st
			}
			st.PlannedMinutes += t.EffectiveDuration()
			if t.Completed {
				st.CompletedMinutes += t.EffectiveDuration()
			}
		}
	}

	stats.Conflicts = len(pairs)

	for _, st := range bySubject {
		stats.Subjects = append(stats.Subjects, *st)
	}
	sort.Slice(stats.Subjects, func(i, j int) bool {
		a, b := stats.Subjects[i], stats.Subjects[j]
		if a.PlannedMinutes != b.PlannedMinutes {
			return a.PlannedMinutes > b.PlannedMinutes
		}
		return a.Subject < b.Subject
	})

	return stats
}

// WeekdayName returns the name of the weekday (0=Monday).
func WeekdayName(weekday int) string {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}

// WeekdayShortName returns the short name of the weekday (0=Monday).
func WeekdayShortName(weekday int) string {
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return names[weekday]
}

// startOfWeek returns the Monday of the week containing the given date.
func startOfWeek(t time.Time) time.Time {
	t = truncateToDay(t)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
