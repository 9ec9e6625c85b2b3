// Package report renders processed articles for people: Markdown for files,
// a simple PDF, and a styled block for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/gosummarize/internal/store"
)

// Markdown renders rec as a document with a title, source details, the
// summary and a statistics table.
func Markdown(rec store.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title(rec))
	if rec.URL != "" {
		fmt.Fprintf(&b, "- Source: [%s](%s)\n", rec.URL, rec.URL)
	}
	if rec.Author != "" {
		fmt.Fprintf(&b, "- Author: %s\n", rec.Author)
	}
	if rec.Published != "" {
		fmt.Fprintf(&b, "- Published: %s\n", rec.Published)
	}
	if !rec.SavedAt.IsZero() {
		fmt.Fprintf(&b, "- Saved: %s\n", rec.SavedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n## Summary\n\n")
	if rec.Summary == "" {
		b.WriteString("_No summary could be produced._\n")
	} else {
		b.WriteString(rec.Summary + "\n")
	}
	b.WriteString("\n## Statistics\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	for _, row := range statRows(rec) {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
	}
	return b.String()
}

func title(rec store.Record) string {
	if t := strings.TrimSpace(rec.Title); t != "" {
		return t
	}
	return "Untitled Article"
}

func statRows(rec store.Record) [][2]string {
	s := rec.Stats
	return [][2]string{
		{"Original words", fmt.Sprint(s.OriginalLength)},
		{"Summary words", fmt.Sprint(s.SummaryLength)},
		{"Compression", fmt.Sprintf("%.0f%%", s.CompressionRatio*100)},
		{"Original reading time", minutes(s.OriginalReadingTime)},
		{"Summary reading time", minutes(s.SummaryReadingTime)},
		{"Word overlap", fmt.Sprintf("%.2f", s.Overlap)},
	}
}

func minutes(n int) string {
	if n == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d min", n)
}
