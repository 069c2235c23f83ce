package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/javiermolinar/studydesk/internal/task"
)

const coachSystemPrompt = `You are a concise study coach. Output ONLY the exact format shown - no markdown, no extra text.`

const coachPromptTemplate = `Review this student's week and output EXACTLY this format (no markdown, no code blocks):

THEME: [ 2-4 word theme ]

BALANCE: One sentence on how study time was split across subjects.
FOLLOW-THROUGH: One sentence on completed versus planned blocks.
CLASHES: One sentence on overlapping blocks, or omit if there are none.

NEXT WEEK:
> First specific scheduling change.
> Second specific scheduling change.

Data Format:
- [x] = completed block, [ ] = open block, ! = overlaps another open block

Weekly Data:
%s

Rules:
- Keep each line under 70 characters
- Be specific with subjects, times and durations from the data
- Output plain text only`

// Coach reviews a study week with an LLM.
type Coach struct {
	client Client
}

// NewCoach creates a new Coach with the given LLM client.
func NewCoach(client Client) *Coach {
	return &Coach{client: client}
}

// ReviewWeek sends the week's blocks to the LLM and returns its review.
func (c *Coach) ReviewWeek(ctx context.Context, week *task.Week) (string, error) {
	prompt := fmt.Sprintf(coachPromptTemplate, FormatWeekData(week))

	reply, err := c.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: coachSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("reviewing week: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// FormatWeekData renders the week as the plain-text log the coach reads.
func FormatWeekData(week *task.Week) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Week: %s - %s\n",
		week.StartDate.Format("Mon Jan 2"),
		week.EndDate().Format("Mon Jan 2, 2006"))

	loc := week.StartDate.Location()
	for _, day := range week.Days {
		if day.Len() == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s\n", day.Date.Format("Mon Jan 2"))

		conflicting := day.Conflicting()
		for _, t := range day.Tasks() {
			done := "[ ]"
			if t.Completed {
				done = "[x]"
			}
			clash := " "
			if conflicting[t.ID] {
				clash = "!"
			}
			start := t.Start.In(loc)
			fmt.Fprintf(&sb, "  %s%s %s-%s %s %s",
				done, clash,
				start.Format("15:04"), t.End().In(loc).Format("15:04"),
				task.FormatDuration(t.EffectiveDuration()),
				t.Title,
			)
			if t.Subject != "" {
				fmt.Fprintf(&sb, " (%s)", t.Subject)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
