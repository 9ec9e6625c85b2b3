package textproc

import (
	"strings"
	"unicode"
)

// minSentenceWords is the smallest word count a fragment needs to count as a
// sentence. Headers, captions and bylines usually fall below it.
const minSentenceWords = 4

// Sentence is a non-empty fragment of a Document with its 0-based position in
// source order.
type Sentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// WordCount returns the number of whitespace-separated words in the sentence.
func (s Sentence) WordCount() int {
	return len(strings.Fields(s.Text))
}

// SplitIntoSentences splits text on '.', '!' and '?' and keeps fragments with
// more than three words, in order of occurrence. Internal whitespace of each
// sentence is collapsed to single spaces.
//
// Periods inside abbreviations and decimals ("e.g.", "3.5") also end a
// sentence; scoring is calibrated against this naive split.
func SplitIntoSentences(text string) []Sentence {
	if text == "" {
		return nil
	}
	var out []Sentence
	for _, frag := range strings.FieldsFunc(text, isTerminator) {
		words := strings.Fields(frag)
		if len(words) < minSentenceWords {
			continue
		}
		out = append(out, Sentence{Index: len(out), Text: strings.Join(words, " ")})
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Tokens returns the maximal runs of letters in text, lower-cased. Numbers and
// punctuation never appear in the result.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// Words returns the whitespace-separated words of text, including numbers and
// punctuation. It is the unit for word-count statistics.
func Words(text string) []string {
	return strings.Fields(text)
}
