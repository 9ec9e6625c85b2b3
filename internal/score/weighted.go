package score

import "github.com/hyperifyio/gosummarize/internal/textproc"

// Weights is the feature table of the weighted scorer. Every weight must be
// non-negative so the score never decreases when a feature grows.
type Weights struct {
	// Frequency multiplies the mean normalized corpus frequency (0..1).
	Frequency float64
	// Early is added when the position is below EarlyCutoff of the sentence count.
	Early float64
	// Late is added when the position is above LateCutoff of the sentence count.
	Late float64
	// Length is added when the word count lies in [MinWords, MaxWords].
	Length float64
	// Keyword is added once per document keyword present in the sentence.
	Keyword float64

	EarlyCutoff float64
	LateCutoff  float64
	MinWords    int
	MaxWords    int
	// Keywords is how many document keywords are extracted.
	Keywords int
}

// DefaultWeights is the canonical table.
var DefaultWeights = Weights{
	Frequency:   0.5,
	Early:       0.3,
	Late:        0.2,
	Length:      0.2,
	Keyword:     0.1,
	EarlyCutoff: 0.2,
	LateCutoff:  0.8,
	MinWords:    10,
	MaxWords:    30,
	Keywords:    10,
}

// WeightedScorer sums independent features from Weights.
type WeightedScorer struct {
	proc    *textproc.Processor
	weights Weights
}

// NewWeighted returns a scorer using w.
func NewWeighted(proc *textproc.Processor, w Weights) *WeightedScorer {
	if proc == nil {
		proc = textproc.NewProcessor(nil)
	}
	return &WeightedScorer{proc: proc, weights: w}
}

// Score implements Scorer.
func (s *WeightedScorer) Score(sentences []textproc.Sentence) ([]float64, error) {
	scores := make([]float64, len(sentences))
	if len(sentences) == 0 {
		return scores, nil
	}
	w := s.weights
	table := frequencyTable(s.proc, sentences)
	keywords := s.proc.ExtractKeywords(joinSentences(sentences), w.Keywords)
	total := float64(len(sentences))

	for i, sent := range sentences {
		tokens := textproc.Tokens(sent.Text)
		if degenerate(sent, tokens) {
			continue
		}
		score := w.Frequency * meanFrequency(table, tokens)

		pos := float64(i)
		if pos < total*w.EarlyCutoff {
			score += w.Early
		} else if pos > total*w.LateCutoff {
			score += w.Late
		}

		if n := sent.WordCount(); n >= w.MinWords && n <= w.MaxWords {
			score += w.Length
		}

		score += w.Keyword * float64(countPresent(keywords, tokens))
		scores[i] = score
	}
	return scores, nil
}

func countPresent(keywords, tokens []string) int {
	if len(keywords) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}
	n := 0
	for _, k := range keywords {
		if _, ok := seen[k]; ok {
			n++
		}
	}
	return n
}
