package task

import (
	"fmt"
	"math"
	"time"
)

// Interval is a half-open span of time [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// MaxMinutes is the longest duration Minutes converts without overflow.
const MaxMinutes = math.MaxInt64 / int64(time.Minute)

// Minutes converts whole minutes to a time.Duration. m must not exceed
// MaxMinutes.
func Minutes(m int) time.Duration {
	return time.Duration(m) * time.Minute
}

// NewInterval builds the interval starting at start and lasting minutes.
func NewInterval(start time.Time, minutes int) Interval {
	return Interval{Start: start, End: start.Add(Minutes(minutes))}
}

// Overlaps returns true if two intervals share any instant.
// Two intervals overlap if: start1 < end2 AND start2 < end1
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// OverlapMinutes returns the length of the intersection in whole minutes,
// rounded to the nearest minute. Returns 0 if there is no overlap.
func (iv Interval) OverlapMinutes(other Interval) int {
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return 0
	}
	return int(math.Round(end.Sub(start).Minutes()))
}

// Minutes returns the interval length in whole minutes.
func (iv Interval) Minutes() int {
	return int(math.Round(iv.End.Sub(iv.Start).Minutes()))
}

// Contains returns true if t falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// String formats the interval as "HH:MM-HH:MM" in the start's location.
func (iv Interval) String() string {
	return FormatClock(iv.Start) + "-" + FormatClock(iv.End.In(iv.Start.Location()))
}

// FormatClock formats an instant as "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}
