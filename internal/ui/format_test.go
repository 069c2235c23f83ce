package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/javiermolinar/studydesk/internal/conflict"
	"github.com/javiermolinar/studydesk/internal/task"
)

func init() {
	color.NoColor = true
}

func TestParseInsightLine(t *testing.T) {
	tests := []struct {
		line       string
		wantPrefix string
		wantText   string
		wantHeader bool
	}{
		{"THEME: Steady week", "  ", "THEME: Steady week", false},
		{"NEXT WEEK:", "  ", "NEXT WEEK:", true},
		{"> Start Math at 09:00.", "  │ ", "Start Math at 09:00.", false},
		{"- Fewer clashes", "    • ", "Fewer clashes", false},
		{"## Summary", "  ", "Summary", true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			prefix, text, _, header := parseInsightLine(tt.line, 72)
			if prefix != tt.wantPrefix || text != tt.wantText || header != tt.wantHeader {
				t.Errorf("parseInsightLine(%q) = %q, %q, %v", tt.line, prefix, text, header)
			}
		})
	}
}

func TestWrapAndPrint(t *testing.T) {
	var buf bytes.Buffer
	wrapAndPrint(&buf, strings.Repeat("word ", 12), "  │ ", 20)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("got %d lines, want wrapping:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "  │ word") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "    word") {
		t.Errorf("continuation = %q", lines[1])
	}
}

func TestStripMarkdownCodeBlocks(t *testing.T) {
	in := "before\n```\ncode\n```\nafter"
	if got := stripMarkdownCodeBlocks(in); got != "before\nafter" {
		t.Errorf("got %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		done, total int
		want        string
	}{
		{0, 0, "[░░░░░░░░░░] (0%)"},
		{30, 60, "[█████░░░░░] (50%)"},
		{90, 60, "[██████████] (100%)"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.done, tt.total, 10); got != tt.want {
			t.Errorf("progressBar(%d, %d) = %q, want %q", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestPrintReport(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := at(10, 0)
	lecture := &task.Task{ID: "a1b2c3d4-0000", Title: "Lecture", Start: &start, Duration: 60}

	report, err := conflict.NewSearcher(conflict.DefaultOptions()).Check([]*task.Task{lecture}, at(10, 30), 60, "")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printReport(&buf, report, loc)
	out := buf.String()

	// Times are shown in the display location.
	for _, want := range []string{"12:30-13:30", "a1b2c3d4", "30m", "13:05-14:05", "moved from 12:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSuggestion_Exhausted(t *testing.T) {
	var buf bytes.Buffer
	s := conflict.Suggestion{Start: at(18, 0), Attempts: 3, Exhausted: true}
	printSuggestion(&buf, at(9, 0), s, 30, time.UTC)
	if !strings.Contains(buf.String(), "no free slot within 3 attempts") {
		t.Errorf("output = %q", buf.String())
	}
}
