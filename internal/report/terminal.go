package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hyperifyio/gosummarize/internal/store"
)

// Theme is the palette of the terminal rendering.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() Theme {
	return Theme{
		Primary: lipgloss.Color("#7C3AED"),
		Muted:   lipgloss.Color("#6C7086"),
		Border:  lipgloss.Color("#45475A"),
	}
}

// Terminal renders rec as a bordered block: bold title, muted source line,
// the summary wrapped to width columns and a one-line statistics footer.
// A width below 20 means 80.
func Terminal(rec store.Record, width int) string {
	return TerminalWithTheme(rec, width, DefaultTheme())
}

// TerminalWithTheme is Terminal with an explicit palette.
func TerminalWithTheme(rec store.Record, width int, theme Theme) string {
	if width < 20 {
		width = 80
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	muted := lipgloss.NewStyle().Foreground(theme.Muted)
	body := lipgloss.NewStyle().Width(width - 4)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	lines := []string{titleStyle.Render(title(rec))}
	var source []string
	for _, s := range []string{rec.URL, rec.Author, rec.Published} {
		if s != "" {
			source = append(source, s)
		}
	}
	if len(source) > 0 {
		lines = append(lines, muted.Render(strings.Join(source, " · ")))
	}
	summary := rec.Summary
	if summary == "" {
		summary = "(no summary)"
	}
	lines = append(lines, "", body.Render(summary), "")

	var stats []string
	for _, row := range statRows(rec) {
		stats = append(stats, row[0]+" "+row[1])
	}
	lines = append(lines, muted.Render(strings.Join(stats[:3], " · ")))
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
