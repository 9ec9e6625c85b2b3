// Package aggregate merges URL lists from the command line, URL files and API
// calls into one canonical, de-duplicated work list.
package aggregate

import (
	"bufio"
	"io"
	"net/url"
	"os"
	"strings"
)

var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"}

// MergeAndNormalize merges URL groups in order, canonicalizes each URL, trims
// obvious tracking parameters and drops exact duplicates. Blank entries and
// strings that do not parse as URLs are skipped; scheme checks are left to
// the fetcher so it can report them per URL.
func MergeAndNormalize(groups ...[]string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 16)
	for _, g := range groups {
		for _, raw := range g {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			u, err := url.Parse(raw)
			if err != nil {
				continue
			}
			key := Normalize(u)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

// Normalize returns the canonical form of u: no fragment, lower-case scheme
// and host, tracking parameters removed and the remaining query sorted.
func Normalize(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	if c.RawQuery != "" {
		q := c.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		c.RawQuery = q.Encode()
	}
	return c.String()
}

// ReadURLList reads one URL per line. Blank lines and lines starting with '#'
// are ignored.
func ReadURLList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// ReadURLFile is ReadURLList over the named file.
func ReadURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadURLList(f)
}
