package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/studydesk/internal/config"
	"github.com/javiermolinar/studydesk/internal/db"
	"github.com/javiermolinar/studydesk/internal/llm"
	"github.com/javiermolinar/studydesk/internal/task"
	"github.com/javiermolinar/studydesk/internal/tui"
)

// Monday 2025-03-10 09:00 UTC.
var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

type cannedClient struct {
	reply string
}

func (c cannedClient) Chat(context.Context, []llm.Message) (string, error) {
	return c.reply, nil
}

func (c cannedClient) ChatJSON(_ context.Context, _ []llm.Message, result any) error {
	return json.Unmarshal([]byte(c.reply), result)
}

func newTestRepo(t *testing.T) *db.SQLite {
	t.Helper()
	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func seed(t *testing.T, repo task.Repository, title string, start time.Time, minutes int) *task.Task {
	t.Helper()
	tsk, err := task.New(title, "Math", &start, minutes, testNow)
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	if err := repo.CreateTask(context.Background(), tsk); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return tsk
}

// run executes one command on a fresh App so flag values never leak
// between invocations.
func run(t *testing.T, repo task.Repository, stdin string, args []string, opts ...Option) (string, error) {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	app := NewApp(repo, config.Default(), opts...)

	var out bytes.Buffer
	app.root.SetOut(&out)
	app.root.SetErr(&out)
	app.root.SetIn(strings.NewReader(stdin))
	app.root.SetArgs(append([]string{"--no-color"}, args...))

	err := app.ExecuteContext(context.Background())
	return out.String(), err
}

func listAll(t *testing.T, repo task.Repository) []*task.Task {
	t.Helper()
	tasks, err := repo.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	return tasks
}

func TestAdd(t *testing.T) {
	t.Run("free slot is saved", func(t *testing.T) {
		repo := newTestRepo(t)
		out, err := run(t, repo, "", []string{"add", "Read chapter 4", "--start=10:00", "--duration=60", "--subject=Biology"})
		if err != nil {
			t.Fatalf("add failed: %v\n%s", err, out)
		}
		if !strings.Contains(out, "Created task") {
			t.Errorf("output = %q, want confirmation", out)
		}

		tasks := listAll(t, repo)
		if len(tasks) != 1 {
			t.Fatalf("got %d tasks, want 1", len(tasks))
		}
		got := tasks[0]
		if !got.Start.Equal(at(10, 0)) || got.Duration != 60 || got.Subject != "Biology" {
			t.Errorf("stored %+v", got)
		}
	})

	t.Run("conflict is refused", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "Lecture", at(10, 0), 60)

		out, err := run(t, repo, "", []string{"add", "Problem set", "--start=10:30", "--duration=30"})
		if !errors.Is(err, task.ErrTimeBlockOverlap) {
			t.Fatalf("error = %v, want %v", err, task.ErrTimeBlockOverlap)
		}
		for _, want := range []string{"Lecture", "30m", "next free slot", "11:05"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if n := len(listAll(t, repo)); n != 1 {
			t.Errorf("got %d tasks, want 1", n)
		}
	})

	t.Run("auto takes the suggestion", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "Lecture", at(10, 0), 60)

		if out, err := run(t, repo, "", []string{"add", "Problem set", "--start=10:30", "--auto"}); err != nil {
			t.Fatalf("add failed: %v\n%s", err, out)
		}

		tasks := listAll(t, repo)
		if len(tasks) != 2 {
			t.Fatalf("got %d tasks, want 2", len(tasks))
		}
		if !tasks[1].Start.Equal(at(11, 5)) {
			t.Errorf("start = %v, want 11:05", tasks[1].Start)
		}
	})

	t.Run("force keeps the overlap", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "Lecture", at(10, 0), 60)

		if out, err := run(t, repo, "", []string{"add", "Problem set", "--start=10:30", "--force"}); err != nil {
			t.Fatalf("add failed: %v\n%s", err, out)
		}
		tasks := listAll(t, repo)
		if len(tasks) != 2 || !tasks[1].Start.Equal(at(10, 30)) {
			t.Errorf("tasks = %v", tasks)
		}
	})

	t.Run("force and auto are exclusive", func(t *testing.T) {
		repo := newTestRepo(t)
		if _, err := run(t, repo, "", []string{"add", "x", "--start=10:30", "--force", "--auto"}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("completed tasks do not block", func(t *testing.T) {
		repo := newTestRepo(t)
		done := seed(t, repo, "Old session", at(10, 0), 60)
		if err := repo.SetCompleted(context.Background(), done.ID, true); err != nil {
			t.Fatal(err)
		}

		if out, err := run(t, repo, "", []string{"add", "New session", "--start=10:00"}); err != nil {
			t.Fatalf("add failed: %v\n%s", err, out)
		}
	})

	t.Run("no start is unscheduled", func(t *testing.T) {
		repo := newTestRepo(t)
		if _, err := run(t, repo, "", []string{"add", "Someday", "reading"}); err != nil {
			t.Fatal(err)
		}
		tasks := listAll(t, repo)
		if len(tasks) != 1 || tasks[0].IsScheduled() || tasks[0].Title != "Someday reading" {
			t.Errorf("tasks = %+v", tasks[0])
		}
	})

	t.Run("auto without start uses next study start", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "Lecture", at(9, 0), 30)

		if _, err := run(t, repo, "", []string{"add", "Review", "--auto"}); err != nil {
			t.Fatal(err)
		}
		tasks := listAll(t, repo)
		if len(tasks) != 2 || !tasks[1].Start.Equal(at(9, 35)) {
			t.Errorf("start = %v, want 09:35", tasks[1].Start)
		}
	})

	t.Run("invalid start", func(t *testing.T) {
		repo := newTestRepo(t)
		if _, err := run(t, repo, "", []string{"add", "x", "--start=9am"}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestReschedule(t *testing.T) {
	t.Run("moving over itself is not a conflict", func(t *testing.T) {
		repo := newTestRepo(t)
		tsk := seed(t, repo, "Lecture", at(10, 0), 60)

		if out, err := run(t, repo, "", []string{"reschedule", tsk.ShortID(), "--start=10:30"}); err != nil {
			t.Fatalf("reschedule failed: %v\n%s", err, out)
		}
		got, err := repo.GetTask(context.Background(), tsk.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Start.Equal(at(10, 30)) || got.Duration != 60 {
			t.Errorf("got %v for %dm", got.Start, got.Duration)
		}
	})

	t.Run("conflict is refused", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "Lecture", at(10, 0), 60)
		tsk := seed(t, repo, "Reading", at(14, 0), 30)

		_, err := run(t, repo, "", []string{"reschedule", tsk.ID, "--start=10:15"})
		if !errors.Is(err, task.ErrTimeBlockOverlap) {
			t.Fatalf("error = %v, want %v", err, task.ErrTimeBlockOverlap)
		}
	})

	t.Run("auto with new duration", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "Lecture", at(10, 0), 60)
		tsk := seed(t, repo, "Reading", at(14, 0), 30)

		if _, err := run(t, repo, "", []string{"reschedule", tsk.ID, "--start=09:30", "--duration=45", "--auto"}); err != nil {
			t.Fatal(err)
		}
		got, _ := repo.GetTask(context.Background(), tsk.ID)
		if !got.Start.Equal(at(11, 5)) || got.Duration != 45 {
			t.Errorf("got %v for %dm, want 11:05 for 45m", got.Start, got.Duration)
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := run(t, repo, "", []string{"reschedule", "nope", "--start=10:00"})
		if !errors.Is(err, task.ErrTaskNotFound) {
			t.Errorf("error = %v, want %v", err, task.ErrTaskNotFound)
		}
	})
}

func TestCheck(t *testing.T) {
	repo := newTestRepo(t)
	lecture := seed(t, repo, "Lecture", at(10, 0), 60)

	out, err := run(t, repo, "", []string{"check", "--start=12:00"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "is free") {
		t.Errorf("output = %q, want free", out)
	}

	out, err = run(t, repo, "", []string{"check", "--start=10:45", "--duration=30"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"conflicts with 1 task(s), 15m overlapping", "Lecture", "11:05"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, repo, "", []string{"check", "--start=10:45", "--exclude", lecture.ShortID()})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "is free") {
		t.Errorf("excluded check = %q, want free", out)
	}
}

func TestSuggest(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "Lecture", at(9, 0), 60)

	out, err := run(t, repo, "", []string{"suggest", "--duration=30"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Mon Mar 10 10:05-10:35") || !strings.Contains(out, "moved from 09:00") {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, repo, "", []string{"suggest", "--start=12:00"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "12:00-12:30") || strings.Contains(out, "moved") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, repo, "", []string{"suggest", "--duration=-5"}); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestDoneUndoDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := seed(t, repo, "Lecture", at(10, 0), 60)
	b := seed(t, repo, "Reading", at(12, 0), 30)

	if _, err := run(t, repo, "", []string{"done", a.ID}); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.GetTask(ctx, a.ID)
	if !got.Completed {
		t.Error("task not completed")
	}

	// Completed, so the slot is free now.
	if _, err := run(t, repo, "", []string{"add", "Overlap", "--start=10:00"}); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, repo, "", []string{"undo", a.ID})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Reopened") || !strings.Contains(out, "Overlap") {
		t.Errorf("undo output = %q, want reopened with conflict", out)
	}

	if _, err := run(t, repo, "", []string{"delete", b.ID}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetTask(ctx, b.ID); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "Lecture", at(10, 0), 60)
	seed(t, repo, "Reading", at(10, 30), 30)
	seed(t, repo, "Tomorrow", at(10, 0).AddDate(0, 0, 1), 30)
	if _, err := run(t, repo, "", []string{"add", "Backlog item"}); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, repo, "", []string{"list"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Monday, March 10") || !strings.Contains(out, "!") {
		t.Errorf("list output = %q", out)
	}
	if strings.Contains(out, "Tomorrow") || strings.Contains(out, "Backlog") {
		t.Errorf("list shows other days: %q", out)
	}

	out, err = run(t, repo, "", []string{"list", "--all"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Tuesday, March 11", "Unscheduled", "Backlog item"} {
		if !strings.Contains(out, want) {
			t.Errorf("list --all missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, repo, "", []string{"list", "--date=2025-03-20"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No tasks found") {
		t.Errorf("empty day output = %q", out)
	}
}

func TestList_ConflictAcrossMidnight(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "Late revision", at(23, 30), 60)
	seed(t, repo, "Early flashcards", at(24, 0), 30)
	seed(t, repo, "Breakfast reading", at(24+8, 0), 30)

	tests := []struct {
		args   []string
		marked []string
		clean  []string
	}{
		{[]string{"list"}, []string{"Late revision"}, nil},
		{[]string{"list", "--date=tomorrow"}, []string{"Early flashcards"}, []string{"Breakfast reading"}},
		{[]string{"list", "--all"}, []string{"Late revision", "Early flashcards"}, []string{"Breakfast reading"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, repo, "", tt.args)
			if err != nil {
				t.Fatal(err)
			}
			for _, title := range tt.marked {
				if line := lineWith(out, title); !strings.Contains(line, "!") {
					t.Errorf("%q not marked: %q\n%s", title, line, out)
				}
			}
			for _, title := range tt.clean {
				if line := lineWith(out, title); line == "" || strings.Contains(line, "!") {
					t.Errorf("%q wrongly marked: %q\n%s", title, line, out)
				}
			}
		})
	}
}

// lineWith returns the first line of out containing s.
func lineWith(out, s string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, s) {
			return line
		}
	}
	return ""
}

func TestPlan(t *testing.T) {
	reply := `{"tasks":[
		{"title":"Review vectors","subject":"Math","duration_minutes":60,"preferred_start":"2025-03-10 10:00"},
		{"title":"Practice problems","subject":"Math","duration_minutes":45,"preferred_start":"2025-03-10 10:30"}
	],"notes":["Midterm is Friday"]}`
	factory := WithClientFactory(func(string, string, string) (llm.Client, error) {
		return cannedClient{reply: reply}, nil
	})

	t.Run("dry run saves nothing", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "Lecture", at(10, 0), 60)

		out, err := run(t, repo, "", []string{"plan", "midterm prep", "--dry-run"}, factory)
		if err != nil {
			t.Fatalf("plan failed: %v\n%s", err, out)
		}
		for _, want := range []string{"Midterm is Friday", "11:05-12:05", "moved from 10:00", "12:10-12:55", "Dry run"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if n := len(listAll(t, repo)); n != 1 {
			t.Errorf("got %d tasks, want 1", n)
		}
	})

	t.Run("accept saves", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "Lecture", at(10, 0), 60)

		out, err := run(t, repo, "a\n", []string{"plan", "midterm prep"}, factory)
		if err != nil {
			t.Fatalf("plan failed: %v\n%s", err, out)
		}
		if !strings.Contains(out, "2 sessions saved") {
			t.Errorf("output = %q", out)
		}
		if n := len(listAll(t, repo)); n != 3 {
			t.Errorf("got %d tasks, want 3", n)
		}
	})

	t.Run("cancel saves nothing", func(t *testing.T) {
		repo := newTestRepo(t)
		out, err := run(t, repo, "x\nc\n", []string{"plan", "midterm prep"}, factory)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "Invalid choice") || !strings.Contains(out, "Planning cancelled") {
			t.Errorf("output = %q", out)
		}
		if n := len(listAll(t, repo)); n != 0 {
			t.Errorf("got %d tasks, want 0", n)
		}
	})

	t.Run("closed input stops the loop", func(t *testing.T) {
		repo := newTestRepo(t)
		if _, err := run(t, repo, "", []string{"plan", "midterm prep"}, factory); err == nil {
			t.Error("expected error on EOF")
		}
	})
}

func TestWeek(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "Lecture", at(10, 0), 60)
	seed(t, repo, "Reading", at(10, 30), 30)
	done := seed(t, repo, "Essay", at(10, 0).AddDate(0, 0, 2), 90)
	if err := repo.SetCompleted(context.Background(), done.ID, true); err != nil {
		t.Fatal(err)
	}

	review := "THEME: Busy start\n\nNEXT WEEK:\n> Move Reading after the lecture."
	out, err := run(t, repo, "", []string{"week", "--insight"},
		WithClientFactory(func(string, string, string) (llm.Client, error) {
			return cannedClient{reply: review}, nil
		}))
	if err != nil {
		t.Fatalf("week failed: %v\n%s", err, out)
	}

	for _, want := range []string{
		"WEEK: Mon Mar 10 - Sun Mar 16, 2025",
		"Wednesday, March 12",
		"Overlapping pairs: 1",
		"Best day: Wednesday (1h30m)",
		"INSIGHT",
		"Move Reading after the lecture.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWeek_ConflictAcrossMidnight(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo, "Late revision", at(23, 30), 60)
	seed(t, repo, "Early flashcards", at(24, 0), 30)

	out, err := run(t, repo, "", []string{"week"})
	if err != nil {
		t.Fatalf("week failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Overlapping pairs: 1") {
		t.Errorf("output missing overlap count:\n%s", out)
	}
	for _, title := range []string{"Late revision", "Early flashcards"} {
		if line := lineWith(out, title); !strings.Contains(line, "!") {
			t.Errorf("%q not marked: %q", title, line)
		}
	}
}

func TestWeek_Empty(t *testing.T) {
	repo := newTestRepo(t)
	out, err := run(t, repo, "", []string{"week", "--date=2025-04-01"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No study sessions scheduled") {
		t.Errorf("output = %q", out)
	}
}

func TestRootOpensAgenda(t *testing.T) {
	repo := newTestRepo(t)
	app := NewApp(repo, config.Default(), WithClock(func() time.Time { return testNow }))

	var got tui.Options
	app.agenda = func(_ context.Context, opts tui.Options) error {
		got = opts
		return nil
	}
	app.root.SetArgs([]string{})
	if err := app.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got.Repo == nil || got.Searcher == nil || !got.Date.Equal(testNow) {
		t.Errorf("agenda options = %+v", got)
	}

	app.root.SetArgs([]string{"agenda", "--date=tomorrow"})
	if err := app.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("agenda date = %v, want %v", got.Date, want)
	}
}

func TestConfigInit(t *testing.T) {
	repo := newTestRepo(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := run(t, repo, "", []string{"config", "--init"}, WithConfigPath(path))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Created") || !strings.Contains(out, "buffer_minutes   = 5") {
		t.Errorf("output = %q", out)
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scheduler.MaxAttempts != 100 {
		t.Errorf("max_attempts = %d", cfg.Scheduler.MaxAttempts)
	}

	out, err = run(t, repo, "", []string{"config", "--init"}, WithConfigPath(path))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("second init output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, newTestRepo(t), "", []string{"version"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "studydesk dev") {
		t.Errorf("output = %q", out)
	}
}
