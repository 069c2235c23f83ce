// Package dateutil provides date parsing and validation utilities.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format or a keyword like today, tomorrow, monday")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM format")
	ErrDateInPast        = errors.New("cannot schedule in the past")
)

// weekdayMap maps weekday names to time.Weekday values.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayRange returns the half-open range [midnight, next midnight) of the day containing t.
func DayRange(t time.Time) (start, end time.Time) {
	start = TruncateToDay(t)
	return start, start.AddDate(0, 0, 1)
}

// WeekRange returns the half-open range [Monday, next Monday) of the ISO
// week containing t.
func WeekRange(t time.Time) (start, end time.Time) {
	day := TruncateToDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	start = day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// ParseDate parses a date string in YYYY-MM-DD format in the location of relativeTo.
// If the string is empty, returns relativeTo's day.
func ParseDate(s string, relativeTo time.Time) (time.Time, error) {
	if s == "" {
		return TruncateToDay(relativeTo), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//   - Keywords: "tomorrow"
//   - Weekday names: "monday" through "sunday" (next occurrence, always future)
//   - Next prefixed: "next-monday" through "next-sunday", "next-week"
//
// All inputs are case-insensitive. Dates are built in relativeTo's location.
// Absolute dates before relativeTo's day return ErrDateInPast unless allowPast is set.
func ParseRelativeDate(s string, relativeTo time.Time, allowPast bool) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	if input == "" || input == "today" {
		return today, nil
	}

	if input == "tomorrow" {
		return today.AddDate(0, 0, 1), nil
	}

	if input == "yesterday" {
		if !allowPast {
			return time.Time{}, ErrDateInPast
		}
		return today.AddDate(0, 0, -1), nil
	}

	if input == "next-week" {
		return today.AddDate(0, 0, 7), nil
	}

	if strings.HasPrefix(input, "next-") {
		weekdayName := strings.TrimPrefix(input, "next-")
		if targetDay, ok := weekdayMap[weekdayName]; ok {
			return nextWeekday(today, targetDay), nil
		}
		return time.Time{}, ErrInvalidDateFormat
	}

	if targetDay, ok := weekdayMap[input]; ok {
		return nextWeekday(today, targetDay), nil
	}

	result, err := time.ParseInLocation("2006-01-02", input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}

	if !allowPast && result.Before(today) {
		return time.Time{}, ErrDateInPast
	}

	return result, nil
}

// ParseClock builds the instant at "HH:MM" on date, in date's location.
func ParseClock(date time.Time, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if len(clock) != 5 || clock[2] != ':' {
		return time.Time{}, ErrInvalidTimeFormat
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hm.Hour(), hm.Minute(), 0, 0, date.Location()), nil
}

// ParseDateTime combines ParseRelativeDate and ParseClock.
func ParseDateTime(date, clock string, relativeTo time.Time, allowPast bool) (time.Time, error) {
	day, err := ParseRelativeDate(date, relativeTo, allowPast)
	if err != nil {
		return time.Time{}, err
	}
	return ParseClock(day, clock)
}

// RoundUp rounds t up to the next multiple of step, in t's location.
// Times already on a boundary are returned unchanged.
func RoundUp(t time.Time, step time.Duration) time.Time {
	if step <= 0 {
		return t
	}
	midnight := TruncateToDay(t)
	elapsed := t.Sub(midnight)
	if rem := elapsed % step; rem != 0 {
		return t.Add(step - rem)
	}
	return t
}

// nextWeekday returns the next occurrence of the given weekday after today.
// If today is the target weekday, returns one week from today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	current := today.Weekday()
	daysUntil := int(target) - int(current)
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return today.AddDate(0, 0, daysUntil)
}
