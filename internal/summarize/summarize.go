// Package summarize builds extractive summaries: it normalizes text, scores
// sentences, keeps the best ones under a length target and reassembles them
// in their original order.
//
// A Summarizer holds no per-call state; one value may serve concurrent calls.
package summarize

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/gosummarize/internal/score"
	"github.com/hyperifyio/gosummarize/internal/textproc"
)

// Summarizer produces extractive summaries. The zero value uses the weighted
// scorer, the English stopwords and a disabled logger.
type Summarizer struct {
	Processor *textproc.Processor
	Scorer    score.Scorer
	// Log receives a warning whenever the positional fallback is used.
	Log *zerolog.Logger
}

// New returns a Summarizer for strategy sharing the English stopword set.
func New(strategy score.Strategy) (*Summarizer, error) {
	proc := textproc.NewProcessor(nil)
	sc, err := score.New(strategy, proc)
	if err != nil {
		return nil, err
	}
	return &Summarizer{Processor: proc, Scorer: sc}, nil
}

// Summarize condenses req.Text. Empty or sentence-less input yields an empty
// Result and no error; only invalid settings (ErrConfiguration) are reported.
// When scoring fails or panics the leading sentences are returned instead and
// Result.Fallback is set.
func (s *Summarizer) Summarize(req Request) (Result, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, nil
	}
	sentences := s.Sentences(req.Text)
	if len(sentences) == 0 {
		return Result{}, nil
	}
	k := TargetCount(len(sentences), MeanWords(sentences), req)

	selected, err := s.rank(sentences, k)
	fallback := false
	if err != nil {
		log := s.logger()
		log.Warn().Err(err).Int("sentences", len(sentences)).Int("keep", k).Msg("scoring unusable; using leading sentences")
		selected = Positional(sentences, k)
		fallback = true
	}
	summary := Join(selected)
	return Result{
		Summary:       summary,
		SentenceCount: len(selected),
		WordCount:     len(textproc.Words(summary)),
		Fallback:      fallback,
	}, nil
}

// Sentences returns the sentences Summarize would rank for text.
func (s *Summarizer) Sentences(text string) []textproc.Sentence {
	return textproc.SplitIntoSentences(textproc.Clean(text))
}

// Keywords returns the n most frequent content words of the cleaned text.
func (s *Summarizer) Keywords(text string, n int) []string {
	return s.processor().ExtractKeywords(textproc.Clean(text), n)
}

func (s *Summarizer) rank(sentences []textproc.Sentence, k int) (selected []textproc.Sentence, err error) {
	defer func() {
		if r := recover(); r != nil {
			selected = nil
			err = fmt.Errorf("%w: scorer panic: %v", score.ErrUnusableScores, r)
		}
	}()
	scores, err := s.scorer().Score(sentences)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", score.ErrUnusableScores, err)
	}
	return Select(sentences, scores, k)
}

func (s *Summarizer) processor() *textproc.Processor {
	if s.Processor == nil {
		return textproc.NewProcessor(nil)
	}
	return s.Processor
}

func (s *Summarizer) scorer() score.Scorer {
	if s.Scorer == nil {
		return score.NewWeighted(s.processor(), score.DefaultWeights)
	}
	return s.Scorer
}

func (s *Summarizer) logger() *zerolog.Logger {
	if s.Log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return s.Log
}
