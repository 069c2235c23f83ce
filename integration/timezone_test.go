package integration

import (
	"context"
	"testing"
	"time"

	"github.com/javiermolinar/studydesk/internal/conflict"
	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/task"
)

func TestTimezoneRoundTrip(t *testing.T) {
	repo, _ := openRepo(t)
	ctx := context.Background()
	madrid := time.FixedZone("CET", 60*60)

	// 00:30 local on Tuesday is 23:30 UTC on Monday.
	localStart := time.Date(2025, 3, 11, 0, 30, 0, 0, madrid)
	tsk := createTask(t, repo, "Early reading", localStart, 60)

	got, err := repo.GetTask(ctx, tsk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Start.Equal(localStart) {
		t.Fatalf("start = %v, want %v", got.Start, localStart)
	}

	// Grouped in the display location, the task belongs to Tuesday.
	week := task.NewWeekFromTasks(localStart, []*task.Task{got})
	if week.Day(1).Len() != 1 || week.Day(0).Len() != 0 {
		t.Errorf("monday = %d, tuesday = %d", week.Day(0).Len(), week.Day(1).Len())
	}

	from, to := dateutil.DayRange(localStart)
	onDay, err := repo.ListTasksBetween(ctx, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(onDay) != 1 {
		t.Errorf("tasks on local Tuesday = %d, want 1", len(onDay))
	}

	// Candidates in another zone are compared as instants.
	conflicts, err := conflict.Detect([]*task.Task{got}, time.Date(2025, 3, 10, 23, 45, 0, 0, time.UTC), 30, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts) != 1 || conflicts[0].OverlapMinutes != 30 {
		t.Errorf("conflicts = %+v", conflicts)
	}
}
