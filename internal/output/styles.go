package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Every color the CLI prints is named here.
var (
	// ColorCyan is used for file paths and component names.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for migrated components and added diff lines.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for skipped components.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for removed diff lines and failed files.
	ColorRed = lipgloss.Color("196")
)

// Semantic styles.
var (
	// StyleNoun styles file paths and component names.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome such as diff hunk separators.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles the closing summary line.
	StyleSummary = lipgloss.NewStyle().Bold(true)

	StyleAdded   = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleRemoved = lipgloss.NewStyle().Foreground(ColorRed)
	StyleSkipped = lipgloss.NewStyle().Foreground(ColorYellow)
)

// Summary counts the outcome of a run.
type Summary struct {
	Files    int
	Changed  int
	Migrated int
	Skipped  int
	Renamed  int
	Failed   int
	Dry      bool
}

// FormatSummary renders the closing line of a run.
func FormatSummary(s Summary) string {
	verb := "changed"
	if s.Dry {
		verb = "would change"
	}
	parts := []string{
		fmt.Sprintf("%d of %d files %s", s.Changed, s.Files, verb),
		StyleAdded.Render(fmt.Sprintf("%d migrated", s.Migrated)),
		StyleSkipped.Render(fmt.Sprintf("%d skipped", s.Skipped)),
		fmt.Sprintf("%d renamed", s.Renamed),
	}
	if s.Failed > 0 {
		parts = append(parts, StyleRemoved.Render(fmt.Sprintf("%d failed", s.Failed)))
	}
	return StyleSummary.Render(strings.Join(parts, ", "))
}
