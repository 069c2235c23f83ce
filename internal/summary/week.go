// Package summary builds week overviews shared by the CLI and the TUI.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/studydesk/internal/dateutil"
	"github.com/javiermolinar/studydesk/internal/llm"
	"github.com/javiermolinar/studydesk/internal/task"
)

// WeekSummary holds aggregated week data and optional insight.
type WeekSummary struct {
	Start   time.Time // Monday 00:00
	End     time.Time // following Monday 00:00
	Week    *task.Week
	Tasks   []*task.Task
	Stats   task.WeekStats
	Insight string
}

// BuildWeekSummaryOptions configures the repository-backed summary builder.
type BuildWeekSummaryOptions struct {
	// WeekStart is any instant in the wanted week; its location decides
	// which day each task falls on.
	WeekStart time.Time
	// Coach, when set, adds an LLM review of a non-empty week.
	Coach *llm.Coach
}

// SummarizeWeek builds week summary data from tasks and a reference date.
// Tasks outside the week are only used for conflict counts.
func SummarizeWeek(weekStart time.Time, tasks []*task.Task) *WeekSummary {
	start, end := dateutil.WeekRange(weekStart)
	week := task.NewWeekFromTasks(start, tasks)

	return &WeekSummary{
		Start: start,
		End:   end,
		Week:  week,
		Tasks: week.AllTasks(),
		Stats: week.Stats(),
	}
}

// BuildWeekSummary loads the tasks, summarizes the requested week and
// optionally adds insight.
func BuildWeekSummary(ctx context.Context, repo task.Repository, opts BuildWeekSummaryOptions) (*WeekSummary, error) {
	weekStart := opts.WeekStart
	if weekStart.IsZero() {
		weekStart = time.Now()
	}

	// The whole snapshot, so overlaps with sessions just outside the
	// week are counted.
	tasks, err := repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}

	summary := SummarizeWeek(weekStart, tasks)

	if opts.Coach != nil && len(summary.Tasks) > 0 {
		insight, err := opts.Coach.ReviewWeek(ctx, summary.Week)
		if err != nil {
			return nil, err
		}
		summary.Insight = insight
	}

	return summary, nil
}
