package extract

import (
	"strings"

	"golang.org/x/net/html"
)

func findTitle(n *html.Node) string {
	if h1 := findFirst(n, "h1"); h1 != nil {
		if t := textOf(h1); t != "" {
			return t
		}
	}
	if t := metaContent(n, "property", "og:title"); t != "" {
		return t
	}
	if t := findFirst(n, "title"); t != nil {
		if s := textOf(t); s != "" {
			return s
		}
	}
	return UntitledTitle
}

func findAuthor(n *html.Node) string {
	if a := metaContent(n, "name", "author"); a != "" {
		return a
	}
	if a := findFirstFunc(n, func(cur *html.Node) bool {
		return isElement(cur, "a") && strings.EqualFold(attr(cur, "rel"), "author")
	}); a != nil {
		if t := textOf(a); t != "" {
			return t
		}
	}
	if s := findFirstFunc(n, func(cur *html.Node) bool {
		return isElement(cur, "span") && hasClass(cur, "author")
	}); s != nil {
		return textOf(s)
	}
	return ""
}

func findPublished(n *html.Node) string {
	if p := metaContent(n, "property", "article:published_time"); p != "" {
		return p
	}
	if t := findFirst(n, "time"); t != nil {
		if dt := strings.TrimSpace(attr(t, "datetime")); dt != "" {
			return dt
		}
		if s := textOf(t); s != "" {
			return s
		}
	}
	if s := findFirstFunc(n, func(cur *html.Node) bool {
		return isElement(cur, "span") && (hasClass(cur, "date") || hasClass(cur, "published"))
	}); s != nil {
		return textOf(s)
	}
	return ""
}

// collectMeta returns every <meta> carrying a name or property and a
// non-empty content. The first occurrence of a key wins.
func collectMeta(n *html.Node) map[string]string {
	out := map[string]string{}
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if isElement(cur, "meta") {
			key := attr(cur, "name")
			if key == "" {
				key = attr(cur, "property")
			}
			content := strings.TrimSpace(attr(cur, "content"))
			if key != "" && content != "" {
				if _, seen := out[key]; !seen {
					out[key] = content
				}
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	if len(out) == 0 {
		return nil
	}
	return out
}

func metaContent(n *html.Node, key, value string) string {
	m := findFirstFunc(n, func(cur *html.Node) bool {
		return isElement(cur, "meta") && strings.EqualFold(attr(cur, key), value)
	})
	if m == nil {
		return ""
	}
	return strings.TrimSpace(attr(m, "content"))
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if strings.EqualFold(c, class) {
			return true
		}
	}
	return false
}

// textOf returns the whitespace-collapsed text below n.
func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
			b.WriteByte(' ')
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapseSpaces(b.String())
}
