package scheduler

import (
	"testing"
	"time"
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

func TestNextStudyStart_BeforeStudyHours(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	// Monday at 7:30 AM
	now := time.Date(2025, 1, 6, 7, 30, 0, 0, time.UTC)
	got := s.NextStudyStart(now)

	want := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextStudyStart_DuringStudyHours(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	// Monday at 10:23 AM - should round up to 10:30
	now := time.Date(2025, 1, 6, 10, 23, 0, 0, time.UTC)
	got := s.NextStudyStart(now)

	want := time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextStudyStart_ExactlyOn15Min(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	now := time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)
	if got := s.NextStudyStart(now); !got.Equal(now) {
		t.Errorf("expected %v, got %v", now, got)
	}
}

func TestNextStudyStart_SubSecondsIgnored(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	now := time.Date(2025, 1, 6, 10, 30, 0, 500, time.UTC)
	want := time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)
	if got := s.NextStudyStart(now); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextStudyStart_AfterStudyHours(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	// Monday at 6:00 PM - should go to Tuesday
	now := time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC)
	got := s.NextStudyStart(now)

	want := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextStudyStart_RoundingPastDayEnd(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	// 16:50 rounds to 17:00, which is no longer within study hours.
	now := time.Date(2025, 1, 6, 16, 50, 0, 0, time.UTC)
	got := s.NextStudyStart(now)

	want := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextStudyStart_Weekend(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	// Saturday - should go to Monday
	now := time.Date(2025, 1, 4, 10, 0, 0, 0, time.UTC)
	got := s.NextStudyStart(now)

	want := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextStudyStart_FridayEvening(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	now := time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)
	got := s.NextStudyStart(now)

	if got.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %s", got.Weekday())
	}
}

func TestNextStudyStart_NoStudyDays(t *testing.T) {
	s := New(nil, "09:00", "17:00")

	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	want := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)
	if got := s.NextStudyStart(now); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNextStudyStart_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	s := New(weekdays, "09:00", "17:00")

	now := time.Date(2025, 1, 6, 7, 0, 0, 0, loc)
	got := s.NextStudyStart(now)

	if got.Location() != loc || got.Hour() != 9 {
		t.Errorf("expected 09:00 in %v, got %v", loc, got)
	}
}

func TestIsStudyDay(t *testing.T) {
	s := New([]string{"Monday", " saturday "}, "09:00", "17:00")

	tests := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), true},  // Monday
		{time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), false}, // Tuesday
		{time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), true},  // Saturday
	}

	for _, tt := range tests {
		if got := s.IsStudyDay(tt.date); got != tt.want {
			t.Errorf("IsStudyDay(%s) = %v, want %v", tt.date.Weekday(), got, tt.want)
		}
	}
}

func TestIsWithinStudyHours(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"at start", time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), true},
		{"middle", time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC), true},
		{"at end", time.Date(2025, 1, 6, 17, 0, 0, 0, time.UTC), false},
		{"before", time.Date(2025, 1, 6, 8, 59, 0, 0, time.UTC), false},
		{"weekend", time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsWithinStudyHours(tt.t); got != tt.want {
				t.Errorf("IsWithinStudyHours() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFits(t *testing.T) {
	s := New(weekdays, "09:00", "17:00")

	tests := []struct {
		name    string
		start   time.Time
		minutes int
		want    bool
	}{
		{"fits", time.Date(2025, 1, 6, 16, 0, 0, 0, time.UTC), 60, true},
		{"overflows", time.Date(2025, 1, 6, 16, 30, 0, 0, time.UTC), 60, false},
		{"before day start", time.Date(2025, 1, 6, 8, 30, 0, 0, time.UTC), 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Fits(tt.start, tt.minutes); got != tt.want {
				t.Errorf("Fits() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	s := New(weekdays, "08:30", "21:15")

	start, end := s.Window(time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC))
	if start.Hour() != 8 || start.Minute() != 30 {
		t.Errorf("start = %v", start)
	}
	if end.Hour() != 21 || end.Minute() != 15 {
		t.Errorf("end = %v", end)
	}
	if s.DayStart() != "08:30" || s.DayEnd() != "21:15" {
		t.Errorf("DayStart/DayEnd = %s/%s", s.DayStart(), s.DayEnd())
	}
}
