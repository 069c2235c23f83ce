// Package tui provides the interactive day agenda for studydesk.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// palette holds the colors a theme is built from.
type palette struct {
	Fg        lipgloss.Color
	FgMuted   lipgloss.Color
	Accent    lipgloss.Color
	Selection lipgloss.Color
	Subject   lipgloss.Color
	Conflict  lipgloss.Color
	Done      lipgloss.Color
	Warning   lipgloss.Color
}

var palettes = map[string]palette{
	"dark": {
		Fg:        lipgloss.Color("#cdd6f4"),
		FgMuted:   lipgloss.Color("#6c7086"),
		Accent:    lipgloss.Color("#89b4fa"),
		Selection: lipgloss.Color("#313244"),
		Subject:   lipgloss.Color("#94e2d5"),
		Conflict:  lipgloss.Color("#f38ba8"),
		Done:      lipgloss.Color("#a6e3a1"),
		Warning:   lipgloss.Color("#f9e2af"),
	},
	"light": {
		Fg:        lipgloss.Color("#4c4f69"),
		FgMuted:   lipgloss.Color("#9ca0b0"),
		Accent:    lipgloss.Color("#1e66f5"),
		Selection: lipgloss.Color("#ccd0da"),
		Subject:   lipgloss.Color("#179299"),
		Conflict:  lipgloss.Color("#d20f39"),
		Done:      lipgloss.Color("#40a02b"),
		Warning:   lipgloss.Color("#df8e1d"),
	},
}

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	TitleStyle    lipgloss.Style
	TodayStyle    lipgloss.Style
	StatsStyle    lipgloss.Style
	SectionStyle  lipgloss.Style
	TimeStyle     lipgloss.Style
	SubjectStyle  lipgloss.Style
	TaskStyle     lipgloss.Style
	DoneStyle     lipgloss.Style
	ConflictStyle lipgloss.Style
	SelectedStyle lipgloss.Style
	EmptyStyle    lipgloss.Style

	// Conflict panel shown after a rejected change
	PanelStyle      lipgloss.Style
	PanelTitleStyle lipgloss.Style

	PromptStyle lipgloss.Style
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
}

// NewStyles builds styles for the named theme. Unknown names fall back
// to the dark theme.
func NewStyles(theme string) *Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes["dark"]
	}

	return &Styles{
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent),
		TodayStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Warning),
		StatsStyle: lipgloss.NewStyle().
			Foreground(p.FgMuted),
		SectionStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.FgMuted).
			MarginTop(1),
		TimeStyle: lipgloss.NewStyle().
			Foreground(p.Accent),
		SubjectStyle: lipgloss.NewStyle().
			Foreground(p.Subject),
		TaskStyle: lipgloss.NewStyle().
			Foreground(p.Fg),
		DoneStyle: lipgloss.NewStyle().
			Foreground(p.Done).
			Strikethrough(true),
		ConflictStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Conflict),
		SelectedStyle: lipgloss.NewStyle().
			Background(p.Selection),
		EmptyStyle: lipgloss.NewStyle().
			Italic(true).
			Foreground(p.FgMuted),
		PanelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Conflict).
			Padding(0, 1),
		PanelTitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Conflict),
		PromptStyle: lipgloss.NewStyle().
			Foreground(p.Accent),
		StatusStyle: lipgloss.NewStyle().
			Foreground(p.Done),
		ErrorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Conflict),
	}
}
