package textproc

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed stopwords_en.txt
var englishList string

// Stopwords is an immutable set of function words excluded from keyword and
// frequency analysis. A set never changes after construction, so one value can
// be shared by any number of goroutines without locking.
type Stopwords struct {
	set map[string]struct{}
}

// NewStopwords builds a frozen set from the given words. Words are trimmed and
// lower-cased; empty entries are ignored.
func NewStopwords(words ...string) *Stopwords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return &Stopwords{set: set}
}

// Contains reports whether word is a stopword. A nil set contains nothing.
func (s *Stopwords) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.set[word]
	return ok
}

// Len returns the number of words in the set.
func (s *Stopwords) Len() int {
	if s == nil {
		return 0
	}
	return len(s.set)
}

var (
	englishOnce sync.Once
	english     *Stopwords
)

// English returns the process-wide English stopword set. It is loaded on first
// use and then shared read-only for the lifetime of the process.
func English() *Stopwords {
	englishOnce.Do(func() {
		english = NewStopwords(strings.Fields(englishList)...)
	})
	return english
}
