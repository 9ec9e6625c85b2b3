// Package stats compares an original text with its summary.
package stats

import (
	"github.com/hyperifyio/gosummarize/internal/textproc"
)

// SummaryStats is the comparison reported next to every summary.
type SummaryStats struct {
	OriginalLength      int     `json:"original_length"`
	SummaryLength       int     `json:"summary_length"`
	CompressionRatio    float64 `json:"compression_ratio"`
	OriginalReadingTime int     `json:"original_reading_time"`
	SummaryReadingTime  int     `json:"summary_reading_time"`
	// Overlap is the Jaccard similarity of the two content-word sets.
	Overlap float64 `json:"overlap"`
}

// Compare counts words in both texts. CompressionRatio is zero when original
// has no words. A nil proc uses the English stopwords for Overlap.
func Compare(proc *textproc.Processor, original, summary string) SummaryStats {
	if proc == nil {
		proc = textproc.NewProcessor(nil)
	}
	ow := len(textproc.Words(original))
	sw := len(textproc.Words(summary))
	out := SummaryStats{
		OriginalLength:      ow,
		SummaryLength:       sw,
		OriginalReadingTime: textproc.ReadingTime(ow),
		SummaryReadingTime:  textproc.ReadingTime(sw),
		Overlap:             proc.Similarity(original, summary),
	}
	if ow > 0 {
		out.CompressionRatio = float64(sw) / float64(ow)
	}
	return out
}
