package textproc

import "sort"

// Processor carries the stopword set used by keyword and frequency analysis.
// It holds no per-call state and is safe for concurrent use.
type Processor struct {
	stopwords *Stopwords
}

// NewProcessor returns a Processor backed by sw, or by the English set when
// sw is nil.
func NewProcessor(sw *Stopwords) *Processor {
	if sw == nil {
		sw = English()
	}
	return &Processor{stopwords: sw}
}

// Stopwords returns the set the processor filters with.
func (p *Processor) Stopwords() *Stopwords { return p.stopwords }

// ContentTokens returns the alphabetic tokens of text that are not stopwords,
// in order of occurrence.
func (p *Processor) ContentTokens(text string) []string {
	toks := Tokens(text)
	out := toks[:0]
	for _, t := range toks {
		if p.stopwords.Contains(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TermCounts counts content tokens of text. order lists each distinct token
// once, in order of first occurrence.
func (p *Processor) TermCounts(text string) (counts map[string]int, order []string) {
	counts = make(map[string]int)
	for _, tok := range p.ContentTokens(text) {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	return counts, order
}

// ExtractKeywords returns up to n content tokens of text by descending count.
// Ties keep first-occurrence order.
func (p *Processor) ExtractKeywords(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	counts, order := p.TermCounts(text)
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Similarity returns the Jaccard index of the content-token sets of a and b,
// or 0 when both are empty.
func (p *Processor) Similarity(a, b string) float64 {
	setA := make(map[string]struct{})
	for _, t := range p.ContentTokens(a) {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, t := range p.ContentTokens(b) {
		setB[t] = struct{}{}
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
