// Package extract isolates article content from fetched pages and local
// documents. HTML is reduced to its article body with title, author and
// publication metadata; PDF, DOCX, Markdown and plain text inputs yield text.
package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// UntitledTitle is used when a document carries no usable title.
const UntitledTitle = "Untitled Article"

// Article is the extracted content of one page or file.
type Article struct {
	URL       string            `json:"url,omitempty"`
	Title     string            `json:"title"`
	Author    string            `json:"author,omitempty"`
	Published string            `json:"published,omitempty"`
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// FromHTML extracts the article body and its metadata from an HTML page.
// The body root is the first <article>, else a div with an article-content,
// post-content or entry-content class, else a role="main" element, else
// <main>, else <body>. Navigation, headers, footers, asides, embedded frames
// and cookie banners inside the root are skipped. Unparseable input yields an
// Article carrying only UntitledTitle.
func FromHTML(input []byte) Article {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Article{Title: UntitledTitle}
	}

	art := Article{
		Title:     findTitle(node),
		Author:    findAuthor(node),
		Published: findPublished(node),
		Metadata:  collectMeta(node),
	}
	if content := findContentRoot(node); content != nil {
		var b strings.Builder
		collectText(&b, content, false)
		art.Text = normalizeWhitespace(b.String())
	}
	return art
}

var contentClasses = []string{"article-content", "post-content", "entry-content"}

func findContentRoot(n *html.Node) *html.Node {
	if root := findFirst(n, "article"); root != nil {
		return root
	}
	if root := findFirstFunc(n, func(cur *html.Node) bool {
		return isElement(cur, "div") && containsAny(strings.ToLower(attr(cur, "class")), contentClasses)
	}); root != nil {
		return root
	}
	if root := findFirstFunc(n, func(cur *html.Node) bool {
		return cur.Type == html.ElementNode && strings.EqualFold(attr(cur, "role"), "main")
	}); root != nil {
		return root
	}
	if root := findFirst(n, "main"); root != nil {
		return root
	}
	return findFirst(n, "body")
}

func findFirst(n *html.Node, tag string) *html.Node {
	return findFirstFunc(n, func(cur *html.Node) bool { return isElement(cur, tag) })
}

func findFirstFunc(n *html.Node, match func(*html.Node) bool) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if match(cur) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && strings.EqualFold(n.Data, tag)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		if isBoilerplateContainer(n) {
			return
		}
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "header", "footer", "aside", "iframe", "form":
			return
		case "pre", "code":
			inPre = true
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote", "ul", "ol":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "div", "section":
			b.WriteString("\n\n")
		case "li":
			b.WriteString("\n")
		case "pre", "code":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer reports whether the element looks like a cookie or
// consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		if containsAny(strings.ToLower(a.Val), []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// normalizeWhitespace trims every line, collapses runs of spaces and keeps at
// most one blank line between paragraphs.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(out) == 0 || out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
