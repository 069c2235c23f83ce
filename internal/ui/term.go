package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Subjects: cyan so the course stands out from the title
	colorSubject = color.New(color.FgCyan, color.Bold)

	// Conflicts: red, they block a save
	colorConflict = color.New(color.FgRed, color.Bold)

	// Free slots and saved tasks
	colorOK = color.New(color.FgGreen)

	// Best-effort answers and out-of-hours placements
	colorWarn = color.New(color.FgYellow)

	// Coach insight
	colorInsight = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatSubject(s string) string {
	if s == "" {
		return ""
	}
	return colorSubject.Sprint(s)
}

func formatConflict(s string) string {
	return colorConflict.Sprint(s)
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

func formatInsight(s string) string {
	return colorInsight.Sprint(s)
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
