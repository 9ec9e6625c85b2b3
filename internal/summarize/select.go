package summarize

import (
	"math"
	"sort"
	"strings"

	"github.com/hyperifyio/gosummarize/internal/score"
	"github.com/hyperifyio/gosummarize/internal/textproc"
)

// TargetCount returns how many of total sentences to keep. With a word target
// it is round(TargetWords/meanWords); otherwise round(total*Ratio). Either way
// the result is raised to MinSentences and capped at total.
func TargetCount(total int, meanWords float64, req Request) int {
	if total <= 0 {
		return 0
	}
	req = req.WithDefaults()
	minK := max(req.MinSentences, 1)
	var k int
	if req.TargetWords > 0 && meanWords > 0 {
		k = int(math.Round(float64(req.TargetWords) / meanWords))
	} else {
		k = int(math.Round(float64(total) * req.Ratio))
	}
	return min(max(k, minK), total)
}

// MeanWords returns the average word count of sentences.
func MeanWords(sentences []textproc.Sentence) float64 {
	if len(sentences) == 0 {
		return 0
	}
	words := 0
	for _, s := range sentences {
		words += s.WordCount()
	}
	return float64(words) / float64(len(sentences))
}

// Select keeps the k best-scoring sentences and returns them in source order.
// Equal scores prefer the earlier sentence. Scores that fail score.Validate
// are rejected with score.ErrUnusableScores.
func Select(sentences []textproc.Sentence, scores []float64, k int) ([]textproc.Sentence, error) {
	if err := score.Validate(scores, len(sentences)); err != nil {
		return nil, err
	}
	k = min(max(k, 0), len(sentences))
	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return inSourceOrder(sentences, order[:k]), nil
}

// Positional returns the first k sentences. It backs Summarize when scoring
// is unusable.
func Positional(sentences []textproc.Sentence, k int) []textproc.Sentence {
	k = min(max(k, 0), len(sentences))
	out := make([]textproc.Sentence, k)
	copy(out, sentences[:k])
	return out
}

func inSourceOrder(sentences []textproc.Sentence, picked []int) []textproc.Sentence {
	out := make([]textproc.Sentence, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

// Join concatenates sentences with ". " and ends the result with exactly one
// period. Trailing punctuation already on a sentence is dropped first.
func Join(sentences []textproc.Sentence) string {
	parts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		t := strings.TrimRight(strings.TrimSpace(s.Text), ".!?,;: ")
		if t == "" {
			continue
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}
