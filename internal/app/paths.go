package app

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// derivePDFPath returns a stable PDF path under dir for an article. The name
// combines a slugified title with a short hash of the URL so re-processing
// a URL overwrites its earlier PDF.
func derivePDFPath(dir, title, rawURL string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(rawURL)))
	short := hex.EncodeToString(h[:])[:12]
	return filepath.Join(dir, slugify(title)+"-"+short+".pdf")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		s = "article"
	}
	return s
}
