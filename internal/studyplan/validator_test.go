package studyplan

import (
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/studydesk/internal/llm"
)

func TestValidator_Validate(t *testing.T) {
	now := time.Date(2025, 1, 13, 10, 0, 30, 0, time.UTC)
	v := NewValidator(now)

	valid := llm.SuggestedTask{Title: "Read", DurationMinutes: 30, PreferredStart: "2025-01-13 11:00"}

	tests := []struct {
		name      string
		mutate    func(*llm.SuggestedTask)
		wantValid bool
		wantField string
	}{
		{name: "valid", mutate: func(*llm.SuggestedTask) {}, wantValid: true},
		{name: "current minute is not past", mutate: func(t *llm.SuggestedTask) { t.PreferredStart = "2025-01-13 10:00" }, wantValid: true},
		{name: "future day", mutate: func(t *llm.SuggestedTask) { t.PreferredStart = "2025-01-20 08:00" }, wantValid: true},
		{name: "blank title", mutate: func(t *llm.SuggestedTask) { t.Title = "   " }, wantField: "title"},
		{name: "zero duration", mutate: func(t *llm.SuggestedTask) { t.DurationMinutes = 0 }, wantField: "duration_minutes"},
		{name: "negative duration", mutate: func(t *llm.SuggestedTask) { t.DurationMinutes = -15 }, wantField: "duration_minutes"},
		{name: "too long", mutate: func(t *llm.SuggestedTask) { t.DurationMinutes = 600 }, wantField: "duration_minutes"},
		{name: "date only", mutate: func(t *llm.SuggestedTask) { t.PreferredStart = "2025-01-13" }, wantField: "preferred_start"},
		{name: "free text", mutate: func(t *llm.SuggestedTask) { t.PreferredStart = "tomorrow morning" }, wantField: "preferred_start"},
		{name: "past today", mutate: func(t *llm.SuggestedTask) { t.PreferredStart = "2025-01-13 09:45" }, wantField: "preferred_start"},
		{name: "past day", mutate: func(t *llm.SuggestedTask) { t.PreferredStart = "2025-01-10 12:00" }, wantField: "preferred_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := valid
			tt.mutate(&st)

			result := v.Validate([]llm.SuggestedTask{st})
			if result.Valid != tt.wantValid {
				t.Fatalf("Validate() valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if tt.wantField == "" {
				return
			}
			if len(result.Errors) != 1 || result.Errors[0].Field != tt.wantField {
				t.Errorf("errors = %v, want one on %s", result.Errors, tt.wantField)
			}
		})
	}
}

func TestValidator_EmptyPlan(t *testing.T) {
	result := NewValidator(time.Now()).Validate(nil)
	if result.Valid {
		t.Fatal("empty plan should be invalid")
	}
	if result.Errors[0].Field != "tasks" {
		t.Errorf("field = %q, want tasks", result.Errors[0].Field)
	}
}

func TestValidator_ReportsEveryTask(t *testing.T) {
	now := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	result := NewValidator(now).Validate([]llm.SuggestedTask{
		{Title: "ok", DurationMinutes: 30, PreferredStart: "2025-01-13 12:00"},
		{Title: "", DurationMinutes: 0, PreferredStart: "bad"},
	})

	if len(result.Errors) != 3 {
		t.Fatalf("errors = %d, want 3: %v", len(result.Errors), result.Errors)
	}
	for _, e := range result.Errors {
		if e.TaskIndex != 1 {
			t.Errorf("error on task %d, want 1", e.TaskIndex)
		}
	}
}

func TestValidationResult_FormatErrors(t *testing.T) {
	if got := (ValidationResult{Valid: true}).FormatErrors(); got != "" {
		t.Errorf("FormatErrors() = %q, want empty", got)
	}

	r := ValidationResult{Errors: []ValidationError{{TaskIndex: 2, Field: "title", Message: "must not be empty"}}}
	got := r.FormatErrors()
	if !strings.Contains(got, "- Task 2: title - must not be empty") {
		t.Errorf("FormatErrors() = %q", got)
	}
	if !strings.HasSuffix(got, "respond again with valid JSON.") {
		t.Errorf("FormatErrors() should end with the retry instruction: %q", got)
	}
}
