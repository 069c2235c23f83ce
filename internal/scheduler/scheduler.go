// Package scheduler provides study-hour aware scheduling logic for tasks.
package scheduler

import (
	"strings"
	"time"

	"github.com/javiermolinar/studydesk/internal/dateutil"
)

// startStep is the granularity of default start times.
const startStep = 15 * time.Minute

// Scheduler knows the configured study days and hours.
type Scheduler struct {
	studyDays map[string]bool
	dayStart  string // "HH:MM"
	dayEnd    string // "HH:MM"
}

// New creates a new Scheduler with the given configuration.
func New(studyDays []string, dayStart, dayEnd string) *Scheduler {
	sd := make(map[string]bool)
	for _, d := range studyDays {
		sd[strings.ToLower(strings.TrimSpace(d))] = true
	}
	return &Scheduler{
		studyDays: sd,
		dayStart:  dayStart,
		dayEnd:    dayEnd,
	}
}

// NextStudyStart returns the default start for a new study block.
// Before study hours on a study day it is today's day start. During study
// hours it is now rounded up to the next quarter hour. Otherwise it is the
// day start of the next study day.
func (s *Scheduler) NextStudyStart(now time.Time) time.Time {
	if s.IsStudyDay(now) {
		start := s.at(now, s.dayStart)
		end := s.at(now, s.dayEnd)

		if now.Before(start) {
			return start
		}
		if now.Before(end) {
			rounded := dateutil.RoundUp(now.Truncate(time.Second), startStep)
			if rounded.Before(end) {
				return rounded
			}
		}
	}
	return s.nextStudyDay(now)
}

// nextStudyDay finds the first study day after from and returns its day start.
func (s *Scheduler) nextStudyDay(from time.Time) time.Time {
	next := dateutil.TruncateToDay(from).AddDate(0, 0, 1)
	for range 7 {
		if s.IsStudyDay(next) {
			return s.at(next, s.dayStart)
		}
		next = next.AddDate(0, 0, 1)
	}
	// No study days configured: fall back to tomorrow.
	return s.at(dateutil.TruncateToDay(from).AddDate(0, 0, 1), s.dayStart)
}

// IsStudyDay returns true if the given time falls on a configured study day.
func (s *Scheduler) IsStudyDay(t time.Time) bool {
	return s.studyDays[strings.ToLower(t.Weekday().String())]
}

// IsWithinStudyHours returns true if the given time is within configured study hours.
func (s *Scheduler) IsWithinStudyHours(t time.Time) bool {
	if !s.IsStudyDay(t) {
		return false
	}
	return !t.Before(s.at(t, s.dayStart)) && t.Before(s.at(t, s.dayEnd))
}

// Fits reports whether a block of the given minutes starting at start ends
// by the day end of the same day.
func (s *Scheduler) Fits(start time.Time, minutes int) bool {
	if start.Before(s.at(start, s.dayStart)) {
		return false
	}
	return !start.Add(time.Duration(minutes) * time.Minute).After(s.at(start, s.dayEnd))
}

// Window returns the study window of the day containing t.
func (s *Scheduler) Window(t time.Time) (start, end time.Time) {
	return s.at(t, s.dayStart), s.at(t, s.dayEnd)
}

// DayStart returns the configured day start time.
func (s *Scheduler) DayStart() string {
	return s.dayStart
}

// DayEnd returns the configured day end time.
func (s *Scheduler) DayEnd() string {
	return s.dayEnd
}

// at returns clock on the date of day, in day's location. Config validation
// guarantees the clock strings parse.
func (s *Scheduler) at(day time.Time, clock string) time.Time {
	t, err := dateutil.ParseClock(day, clock)
	if err != nil {
		return dateutil.TruncateToDay(day)
	}
	return t
}
