package task

import (
	"testing"
	"time"
)

func scheduled(id string, start time.Time, duration int) *Task {
	s := start
	return &Task{ID: id, Title: id, Start: &s, Duration: duration}
}

func TestNewDay(t *testing.T) {
	date := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)
	day := NewDay(date)

	if day.Len() != 0 {
		t.Errorf("expected empty day, got %d tasks", day.Len())
	}

	expected := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if !day.Date.Equal(expected) {
		t.Errorf("expected date %v, got %v", expected, day.Date)
	}
}

func TestDay_AddTask(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("sorted by start", func(t *testing.T) {
		day := NewDay(date)
		day.AddTask(scheduled("b", at(11, 0), 30))
		day.AddTask(scheduled("a", at(9, 0), 30))
		day.AddTask(scheduled("c", at(14, 0), 30))

		tasks := day.Tasks()
		if len(tasks) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(tasks))
		}
		for i, want := range []string{"a", "b", "c"} {
			if tasks[i].ID != want {
				t.Errorf("task %d = %q, want %q", i, tasks[i].ID, want)
			}
		}
	})

	t.Run("rejects nil unscheduled and other days", func(t *testing.T) {
		day := NewDay(date)
		if day.AddTask(nil) {
			t.Error("nil task added")
		}
		if day.AddTask(&Task{ID: "x"}) {
			t.Error("unscheduled task added")
		}
		if day.AddTask(scheduled("y", at(9, 0).AddDate(0, 0, 1), 30)) {
			t.Error("task from next day added")
		}
		if day.Len() != 0 {
			t.Errorf("expected empty day, got %d", day.Len())
		}
	})

	t.Run("tasks copy is independent", func(t *testing.T) {
		day := NewDayWithTasks(date, []*Task{scheduled("a", at(9, 0), 30)})
		tasks := day.Tasks()
		tasks[0] = nil
		if day.Tasks()[0] == nil {
			t.Error("mutating the copy changed the day")
		}
	})
}

func TestDay_Includes_Location(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	day := NewDay(time.Date(2025, 3, 10, 0, 0, 0, 0, tokyo))

	// 2025-03-09 20:00 UTC is 2025-03-10 05:00 in Tokyo.
	if !day.Includes(time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)) {
		t.Error("expected instant to fall on the Tokyo day")
	}
	if day.Includes(time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)) {
		t.Error("expected instant to fall on the next Tokyo day")
	}
}

func TestDay_RemoveTask(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day := NewDayWithTasks(date, []*Task{
		scheduled("a", at(9, 0), 30),
		scheduled("b", at(10, 0), 30),
	})

	removed := day.RemoveTask("a")
	if removed == nil || removed.ID != "a" {
		t.Fatalf("expected to remove a, got %v", removed)
	}
	if day.Len() != 1 {
		t.Errorf("expected 1 task, got %d", day.Len())
	}
	if day.RemoveTask("missing") != nil {
		t.Error("expected nil for missing task")
	}
}

func TestDay_ConflictPairs(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	done := scheduled("done", at(9, 15), 30)
	done.Completed = true

	day := NewDayWithTasks(date, []*Task{
		scheduled("a", at(9, 0), 60),
		scheduled("b", at(9, 30), 60),
		scheduled("c", at(10, 30), 30), // touches b's end
		scheduled("d", at(8, 0), 300),  // covers everything
		done,
	})

	pairs := day.ConflictPairs()
	got := make(map[string]int)
	for _, p := range pairs {
		got[p.First.ID+p.Second.ID] = p.OverlapMinutes
	}

	want := map[string]int{
		"da": 60,
		"db": 60,
		"dc": 30,
		"ab": 30,
	}
	if len(got) != len(want) {
		t.Fatalf("got pairs %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("pair %s overlap = %d, want %d", k, got[k], v)
		}
	}

	ids := day.Conflicting()
	if ids["done"] {
		t.Error("completed task must not be reported as conflicting")
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if !ids[id] {
			t.Errorf("expected %s to be conflicting", id)
		}
	}
}

func TestDay_ConflictPairs_AcrossMidnight(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	late := scheduled("late", monday.Add(23*time.Hour+30*time.Minute), 60)
	early := scheduled("early", tuesday, 30)
	free := scheduled("free", tuesday.Add(time.Hour), 30)
	all := []*Task{late, early, free}

	for _, date := range []time.Time{monday, tuesday} {
		day := NewDayWithTasks(date, all)

		pairs := day.ConflictPairs()
		if len(pairs) != 1 {
			t.Fatalf("%s: pairs = %+v, want 1", date.Weekday(), pairs)
		}
		p := pairs[0]
		if p.First.ID != "late" || p.Second.ID != "early" || p.OverlapMinutes != 30 {
			t.Errorf("%s: pair = %s/%s %dm, want late/early 30m", date.Weekday(), p.First.ID, p.Second.ID, p.OverlapMinutes)
		}

		ids := day.Conflicting()
		if !ids["late"] || !ids["early"] || ids["free"] {
			t.Errorf("%s: conflicting = %v", date.Weekday(), ids)
		}
	}

	// Without a snapshot only the day's own tasks are compared.
	day := NewDay(tuesday)
	day.AddTask(early)
	if pairs := day.ConflictPairs(); len(pairs) != 0 {
		t.Errorf("pairs without snapshot = %+v", pairs)
	}
}

func TestDay_Stats(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	done := scheduled("done", at(13, 0), 60)
	done.Completed = true

	day := NewDayWithTasks(date, []*Task{
		scheduled("a", at(9, 0), 90),
		scheduled("b", at(11, 0), 0), // default duration
		done,
	})

	stats := day.Stats()
	if stats.TotalTasks != 3 {
		t.Errorf("TotalTasks = %d, want 3", stats.TotalTasks)
	}
	if stats.PlannedMinutes != 180 {
		t.Errorf("PlannedMinutes = %d, want 180", stats.PlannedMinutes)
	}
	if stats.CompletedMinutes != 60 {
		t.Errorf("CompletedMinutes = %d, want 60", stats.CompletedMinutes)
	}
	if stats.OpenMinutes() != 120 {
		t.Errorf("OpenMinutes() = %d, want 120", stats.OpenMinutes())
	}
	if stats.CompletedPercent() != 33 {
		t.Errorf("CompletedPercent() = %d, want 33", stats.CompletedPercent())
	}
	if (DayStats{}).CompletedPercent() != 0 {
		t.Error("empty stats percent should be 0")
	}
}
