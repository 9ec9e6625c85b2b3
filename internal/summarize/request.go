package summarize

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks caller-supplied settings that cannot be honored.
// It is the only error Summarize returns.
var ErrConfiguration = errors.New("invalid summary configuration")

const (
	// DefaultRatio is the share of sentences kept when no word target is set.
	DefaultRatio = 0.3
	// DefaultMinSentences is the smallest summary, when the source allows it.
	DefaultMinSentences = 3
)

// Request describes one summarization call. Zero Ratio and zero MinSentences
// take the defaults; a positive TargetWords overrides Ratio.
type Request struct {
	Text         string  `json:"text"`
	Ratio        float64 `json:"ratio,omitempty"`
	TargetWords  int     `json:"word_count,omitempty"`
	MinSentences int     `json:"min_sentences,omitempty"`
}

// Result is the summary of one Request.
type Result struct {
	Summary       string `json:"summary"`
	SentenceCount int    `json:"sentence_count"`
	WordCount     int    `json:"word_count"`
	// Fallback is set when scoring failed and the leading sentences were used.
	Fallback bool `json:"fallback"`
}

// WithDefaults returns r with unset fields filled in.
func (r Request) WithDefaults() Request {
	if r.Ratio == 0 {
		r.Ratio = DefaultRatio
	}
	if r.MinSentences == 0 {
		r.MinSentences = DefaultMinSentences
	}
	return r
}

// Validate rejects settings outside their domain. It expects defaults to have
// been applied.
func (r Request) Validate() error {
	if !(r.Ratio > 0 && r.Ratio <= 1) {
		return fmt.Errorf("%w: ratio %v outside (0,1]", ErrConfiguration, r.Ratio)
	}
	if r.TargetWords < 0 {
		return fmt.Errorf("%w: word count %d must be positive", ErrConfiguration, r.TargetWords)
	}
	if r.MinSentences < 1 {
		return fmt.Errorf("%w: minimum sentences %d must be at least 1", ErrConfiguration, r.MinSentences)
	}
	return nil
}
