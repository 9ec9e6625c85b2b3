package score

import "github.com/hyperifyio/gosummarize/internal/textproc"

// FrequencyScorer ranks sentences by the mean normalized corpus frequency of
// their words, ignoring position and length.
type FrequencyScorer struct {
	proc *textproc.Processor
}

// NewFrequency returns a frequency-only scorer.
func NewFrequency(proc *textproc.Processor) *FrequencyScorer {
	if proc == nil {
		proc = textproc.NewProcessor(nil)
	}
	return &FrequencyScorer{proc: proc}
}

// Score implements Scorer.
func (s *FrequencyScorer) Score(sentences []textproc.Sentence) ([]float64, error) {
	scores := make([]float64, len(sentences))
	if len(sentences) == 0 {
		return scores, nil
	}
	table := frequencyTable(s.proc, sentences)
	for i, sent := range sentences {
		tokens := textproc.Tokens(sent.Text)
		if degenerate(sent, tokens) {
			continue
		}
		scores[i] = meanFrequency(table, tokens)
	}
	return scores, nil
}
