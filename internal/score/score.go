// Package score ranks sentences for extractive summarization. Each strategy
// produces one non-negative score per sentence, aligned by position; the
// caller decides what to keep.
package score

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/textproc"
)

// ErrUnusableScores reports that a scorer could not produce a ranking the
// selector can rely on.
var ErrUnusableScores = errors.New("unusable sentence scores")

// ErrUnknownStrategy is returned by ParseStrategy for unrecognized names.
var ErrUnknownStrategy = errors.New("unknown scoring strategy")

// Strategy selects a scoring method.
type Strategy int

const (
	// Weighted sums frequency, position, length and keyword features.
	Weighted Strategy = iota
	// Frequency ranks by mean corpus frequency of a sentence's words only.
	Frequency
)

func (s Strategy) String() string {
	switch s {
	case Weighted:
		return "weighted"
	case Frequency:
		return "frequency"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a name to a Strategy. The empty string selects Weighted;
// "extractive" and "gensim" are accepted aliases.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "weighted", "extractive":
		return Weighted, nil
	case "frequency", "gensim":
		return Frequency, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Scorer assigns a score to every sentence. The result has the same length and
// order as the input.
type Scorer interface {
	Score(sentences []textproc.Sentence) ([]float64, error)
}

// New returns the scorer for strategy, using proc for stopwords.
func New(strategy Strategy, proc *textproc.Processor) (Scorer, error) {
	if proc == nil {
		proc = textproc.NewProcessor(nil)
	}
	switch strategy {
	case Weighted:
		return NewWeighted(proc, DefaultWeights), nil
	case Frequency:
		return NewFrequency(proc), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, strategy)
	}
}

// Validate checks that scores can rank n sentences: one finite, non-negative
// value per sentence and at least one positive value.
func Validate(scores []float64, n int) error {
	if len(scores) != n {
		return fmt.Errorf("%w: got %d scores for %d sentences", ErrUnusableScores, len(scores), n)
	}
	positive := false
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
			return fmt.Errorf("%w: score %d is %v", ErrUnusableScores, i, s)
		}
		if s > 0 {
			positive = true
		}
	}
	if n > 0 && !positive {
		return fmt.Errorf("%w: all scores are zero", ErrUnusableScores)
	}
	return nil
}

// frequencyTable returns each content token's count across all sentences,
// divided by the largest count, so values fall in (0, 1].
func frequencyTable(proc *textproc.Processor, sentences []textproc.Sentence) map[string]float64 {
	counts, _ := proc.TermCounts(joinSentences(sentences))
	maxCount := 0
	for _, c := range counts {
		maxCount = max(maxCount, c)
	}
	table := make(map[string]float64, len(counts))
	for tok, c := range counts {
		table[tok] = float64(c) / float64(maxCount)
	}
	return table
}

// meanFrequency averages table values over the sentence's alphabetic tokens;
// stopwords count as zero.
func meanFrequency(table map[string]float64, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tokens {
		sum += table[t]
	}
	return sum / float64(len(tokens))
}

func joinSentences(sentences []textproc.Sentence) string {
	parts := make([]string, len(sentences))
	for i, s := range sentences {
		parts[i] = s.Text
	}
	return strings.Join(parts, ". ")
}

// degenerate reports sentences that always score zero.
func degenerate(s textproc.Sentence, tokens []string) bool {
	return s.WordCount() <= 1 || len(tokens) == 0
}
