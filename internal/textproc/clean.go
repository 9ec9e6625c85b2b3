package textproc

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	rawTextElementRe = regexp.MustCompile(`(?is)<(?:script|style|noscript)\b[^>]*>.*?</(?:script|style|noscript)\s*>`)
	blockTagRe       = regexp.MustCompile(`(?i)</?(?:p|div|br|hr|h[1-6]|li|ul|ol|article|section|main|header|footer|blockquote|pre|table|tr)\b[^>]*>`)
	tagRe            = regexp.MustCompile(`<[^>]+>`)
)

// Clean turns raw text or simple HTML into a normalized Document: markup and
// entities are removed, compatibility characters are folded (NFKC), the text
// is lower-cased, characters other than letters, digits, whitespace and the
// punctuation ".,!?-" are dropped, whitespace is collapsed, and paragraphs are
// separated by exactly one blank line.
//
// Clean is idempotent: Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = rawTextElementRe.ReplaceAllString(text, " ")
	text = blockTagRe.ReplaceAllString(text, "\n\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)
	text = stripSpecialChars(text)
	// Stripping can leave a base letter next to a combining mark that was
	// separated by punctuation; compose again so a second pass is a no-op.
	text = norm.NFKC.String(text)
	return normalizeParagraphs(text)
}

func stripSpecialChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
			b.WriteRune(r)
		case r == '_', r == '.', r == ',', r == '!', r == '?', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeParagraphs joins wrapped lines into single-spaced paragraphs and
// separates paragraphs (runs of blank lines) with a single blank line.
func normalizeParagraphs(s string) string {
	var paras []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			flush()
			continue
		}
		cur = append(cur, fields...)
	}
	flush()
	return strings.Join(paras, "\n\n")
}
