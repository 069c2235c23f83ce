package studyplan

import (
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/studydesk/internal/llm"
)

// maxBlockMinutes caps a single proposed study block.
const maxBlockMinutes = 8 * 60

// ValidationError represents a single validation error for a suggested task.
type ValidationError struct {
	TaskIndex int    // Index of the task in the response
	Field     string // "title", "duration_minutes", "preferred_start" or "tasks"
	Message   string
}

// String returns a formatted error message.
func (e ValidationError) String() string {
	return fmt.Sprintf("Task %d: %s - %s", e.TaskIndex, e.Field, e.Message)
}

// ValidationResult contains the result of validating a model response.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// FormatErrors returns the errors as feedback for the next model turn.
func (r ValidationResult) FormatErrors() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Your response had these errors:\n")
	for _, e := range r.Errors {
		fmt.Fprintf(&sb, "- %s\n", e)
	}
	sb.WriteString("\nPlease correct these issues and respond again with valid JSON.")
	return sb.String()
}

// Validator checks suggested tasks before they are placed.
// Overlaps are not errors here; placement moves blocks to free slots.
type Validator struct {
	now time.Time
}

// NewValidator creates a Validator. Preferred starts are parsed in now's location.
func NewValidator(now time.Time) *Validator {
	return &Validator{now: now}
}

// Validate checks every task for a title, a sane duration and a parseable
// preferred start that is not in the past.
func (v *Validator) Validate(tasks []llm.SuggestedTask) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(tasks) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			TaskIndex: -1,
			Field:     "tasks",
			Message:   "no tasks were proposed",
		})
	}

	for i, t := range tasks {
		if strings.TrimSpace(t.Title) == "" {
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i,
				Field:     "title",
				Message:   "must not be empty",
			})
		}

		switch {
		case t.DurationMinutes <= 0:
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i,
				Field:     "duration_minutes",
				Message:   fmt.Sprintf("%d is invalid (must be a positive number of minutes)", t.DurationMinutes),
			})
		case t.DurationMinutes > maxBlockMinutes:
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i,
				Field:     "duration_minutes",
				Message:   fmt.Sprintf("%d is too long (split blocks longer than %d minutes)", t.DurationMinutes, maxBlockMinutes),
			})
		}

		start, err := t.StartIn(v.now.Location())
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i,
				Field:     "preferred_start",
				Message:   fmt.Sprintf("'%s' is invalid (must be YYYY-MM-DD HH:MM format)", t.PreferredStart),
			})
			continue
		}
		if start.Before(v.now.Truncate(time.Minute)) {
			result.Errors = append(result.Errors, ValidationError{
				TaskIndex: i,
				Field:     "preferred_start",
				Message:   fmt.Sprintf("'%s' is in the past", t.PreferredStart),
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
