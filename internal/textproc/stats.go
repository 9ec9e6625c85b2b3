package textproc

import "math"

// WordsPerMinute is the reading speed behind ReadingTime.
const WordsPerMinute = 200

// TextStats summarizes the size of a text.
type TextStats struct {
	SentenceCount      int     `json:"num_sentences"`
	WordCount          int     `json:"num_words"`
	AvgSentenceLength  float64 `json:"avg_sentence_length"`
	ReadingTimeMinutes int     `json:"reading_time"`
}

// GetTextStats counts sentences (as SplitIntoSentences sees them) and words of
// text. AvgSentenceLength is 0 when there are no sentences.
func GetTextStats(text string) TextStats {
	sentences := SplitIntoSentences(text)
	words := len(Words(text))
	st := TextStats{
		SentenceCount:      len(sentences),
		WordCount:          words,
		ReadingTimeMinutes: ReadingTime(words),
	}
	if len(sentences) > 0 {
		st.AvgSentenceLength = float64(words) / float64(len(sentences))
	}
	return st
}

// ReadingTime returns whole minutes needed to read words words, at least one
// minute for any non-empty text and zero for an empty one.
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(words)/WordsPerMinute)))
}
