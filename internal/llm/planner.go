package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PreferredStartLayout is the wire format of SuggestedTask.PreferredStart.
const PreferredStartLayout = "2006-01-02 15:04"

const studyPrompt = `You are a study planning assistant. You break a learning goal into focused study blocks.

Context:
- Now: %s (%s)
- Study days: %s
- Study hours: %s to %s
- Default block length: %d minutes

%s

%s

Student goal: "%s"

Rules:
1. Return JSON only (no markdown, no explanation).
2. Each task is one focused study block with a short imperative title.
3. "subject" is the course or topic the block belongs to.
4. duration_minutes is a positive multiple of 5, between 15 and 180.
5. preferred_start uses "YYYY-MM-DD HH:MM" (24-hour, local time) and is never before now.
6. Keep blocks within study hours on study days.
7. Avoid the existing blocks listed above. Overlaps will be moved automatically, so prefer realistic times over perfect packing.
8. Spread long goals over several days; prefer the usual study times when they exist.
9. Put caveats for the student in "notes" as plain strings.

JSON schema:
{
  "tasks": [
    {
      "title": "string",
      "subject": "string",
      "duration_minutes": 45,
      "preferred_start": "YYYY-MM-DD HH:MM"
    }
  ],
  "notes": ["string"]
}`

// ExistingTask is a scheduled block shown to the model as context.
type ExistingTask struct {
	Start   time.Time
	End     time.Time
	Title   string
	Subject string
}

// SuggestRequest contains the input for a study plan suggestion.
type SuggestRequest struct {
	Goal            string
	Now             time.Time
	StudyDays       []string
	DayStart        string // "HH:MM"
	DayEnd          string // "HH:MM"
	DefaultDuration int
	Existing        []ExistingTask // upcoming blocks to avoid
	Recent          []ExistingTask // history used to infer usual study times
}

// SuggestResponse is the JSON document the model returns.
type SuggestResponse struct {
	Tasks []SuggestedTask `json:"tasks"`
	Notes []string        `json:"notes"`
}

// SuggestedTask is one study block proposed by the model.
type SuggestedTask struct {
	Title           string `json:"title"`
	Subject         string `json:"subject"`
	DurationMinutes int    `json:"duration_minutes"`
	PreferredStart  string `json:"preferred_start"`
}

// StartIn parses PreferredStart in loc.
func (t SuggestedTask) StartIn(loc *time.Location) (time.Time, error) {
	start, err := time.ParseInLocation(PreferredStartLayout, strings.TrimSpace(t.PreferredStart), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("preferred_start %q must use YYYY-MM-DD HH:MM", t.PreferredStart)
	}
	return start, nil
}

// Planner turns a free-form study goal into proposed study blocks.
type Planner struct {
	client Client
}

// NewPlanner creates a new Planner with the given LLM client.
func NewPlanner(client Client) *Planner {
	return &Planner{client: client}
}

// Suggest asks the model for study blocks that reach req.Goal.
func (p *Planner) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResponse, error) {
	return p.SuggestWithMessages(ctx, p.BuildInitialMessages(req))
}

// SuggestWithMessages runs the request on a caller-built conversation,
// which lets callers append validation feedback and retry.
func (p *Planner) SuggestWithMessages(ctx context.Context, messages []Message) (*SuggestResponse, error) {
	var resp SuggestResponse
	if err := p.client.ChatJSON(ctx, messages, &resp); err != nil {
		return nil, fmt.Errorf("getting study plan from LLM: %w", err)
	}
	return &resp, nil
}

// BuildInitialMessages creates the initial message list for a request.
func (p *Planner) BuildInitialMessages(req SuggestRequest) []Message {
	dayStart := req.DayStart
	if dayStart == "" {
		dayStart = "08:00"
	}
	dayEnd := req.DayEnd
	if dayEnd == "" {
		dayEnd = "22:00"
	}
	duration := req.DefaultDuration
	if duration <= 0 {
		duration = 30
	}
	studyDays := "every day"
	if len(req.StudyDays) > 0 {
		studyDays = strings.Join(req.StudyDays, ", ")
	}

	prompt := fmt.Sprintf(studyPrompt,
		req.Now.Format(PreferredStartLayout),
		req.Now.Format("Monday"),
		studyDays,
		dayStart,
		dayEnd,
		duration,
		formatExisting(req.Existing),
		formatUsualTimes(req.Recent),
		req.Goal,
	)

	return []Message{
		{Role: RoleSystem, Content: prompt},
		{Role: RoleUser, Content: req.Goal},
	}
}

func formatExisting(tasks []ExistingTask) string {
	if len(tasks) == 0 {
		return "Existing study blocks: None"
	}

	tasks = sortedExisting(tasks)

	var sb strings.Builder
	sb.WriteString("Existing study blocks (avoid overlaps):\n")
	for _, t := range tasks {
		fmt.Fprintf(&sb, "- %s-%s: %s", t.Start.Format(PreferredStartLayout), t.End.Format("15:04"), t.Title)
		if t.Subject != "" {
			fmt.Fprintf(&sb, " [%s]", t.Subject)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatUsualTimes summarises recent history as the median start time per
// subject.
func formatUsualTimes(tasks []ExistingTask) string {
	windows := usualTimes(tasks)
	if len(windows) == 0 {
		return "Usual study times: None"
	}

	var sb strings.Builder
	sb.WriteString("Usual study times from recent history (median):\n")
	for _, w := range windows {
		fmt.Fprintf(&sb, "- %s\n", w)
	}
	return sb.String()
}

func usualTimes(tasks []ExistingTask) []string {
	type summary struct {
		starts    []int
		durations []int
	}

	bySubject := make(map[string]*summary)
	for _, t := range tasks {
		key := strings.TrimSpace(t.Subject)
		if key == "" || t.Start.IsZero() {
			continue
		}
		s := bySubject[key]
		if s == nil {
			s = &summary{}
			bySubject[key] = s
		}
		s.starts = append(s.starts, t.Start.Hour()*60+t.Start.Minute())
		s.durations = append(s.durations, int(t.End.Sub(t.Start).Minutes()))
	}

	keys := make([]string, 0, len(bySubject))
	for key := range bySubject {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(keys))
	for _, key := range keys {
		s := bySubject[key]
		sort.Ints(s.starts)
		sort.Ints(s.durations)
		result = append(result, fmt.Sprintf("%s: ~%s for %dm (n=%d)",
			key,
			minutesToHHMM(roundToQuarterHour(median(s.starts))),
			median(s.durations),
			len(s.starts),
		))
	}
	return result
}

func sortedExisting(tasks []ExistingTask) []ExistingTask {
	sorted := append([]ExistingTask(nil), tasks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return sorted
}

func median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

func roundToQuarterHour(minutes int) int {
	if minutes < 0 {
		return 0
	}
	rounded := ((minutes + 7) / 15) * 15
	if rounded > 23*60+59 {
		return 23*60 + 59
	}
	return rounded
}

func minutesToHHMM(minutes int) string {
	minutes = max(0, min(minutes, 23*60+59))
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
