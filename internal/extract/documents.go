package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FromText wraps plain text. The first line becomes the title when it is
// short and carries no sentence terminator.
func FromText(input []byte) Article {
	body := normalizeWhitespace(strings.ReplaceAll(string(input), "\r\n", "\n"))
	art := Article{Title: UntitledTitle, Text: body}
	first, rest, found := strings.Cut(body, "\n")
	if found && len(strings.Fields(first)) <= 12 && !strings.ContainsAny(first, ".!?") {
		art.Title = first
		art.Text = strings.TrimSpace(rest)
	}
	return art
}

// FromMarkdown renders Markdown to paragraphs of plain text. The first
// heading becomes the title; headings are not part of the text.
func FromMarkdown(input []byte) Article {
	doc := goldmark.New().Parser().Parse(text.NewReader(input))
	art := Article{Title: UntitledTitle}
	var paras []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			if art.Title == UntitledTitle {
				if t := markdownText(h, input); t != "" {
					art.Title = t
				}
			}
			continue
		}
		if t := markdownText(n, input); t != "" {
			paras = append(paras, t)
		}
	}
	art.Text = normalizeWhitespace(strings.Join(paras, "\n\n"))
	return art
}

func markdownText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		buf.WriteString(markdownText(c, src))
		if c.Type() == ast.TypeBlock {
			buf.WriteByte('\n')
		}
	}
	return strings.TrimSpace(buf.String())
}

// FromPDF extracts the plain text of every page.
func FromPDF(input []byte) (Article, error) {
	path, cleanup, err := spool(input, "gosummarize-*.pdf")
	if err != nil {
		return Article{}, err
	}
	defer cleanup()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return Article{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t = strings.TrimSpace(t); t != "" {
			pages = append(pages, t)
		}
	}
	return Article{Title: UntitledTitle, Text: normalizeWhitespace(strings.Join(pages, "\n\n"))}, nil
}

// FromDOCX extracts paragraph text from a Word document. A leading
// paragraph styled as Title or Heading1 becomes the title.
func FromDOCX(input []byte) (Article, error) {
	doc, err := docx.Parse(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return Article{}, fmt.Errorf("parse docx: %w", err)
	}
	art := Article{Title: UntitledTitle}
	var paras []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		t := docxParagraphText(para)
		if t == "" {
			continue
		}
		if len(paras) == 0 && art.Title == UntitledTitle && docxIsTitle(para) {
			art.Title = t
			continue
		}
		paras = append(paras, t)
	}
	art.Text = normalizeWhitespace(strings.Join(paras, "\n\n"))
	return art, nil
}

func docxIsTitle(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	return style == "title" || style == "heading1"
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// spool writes input to a temporary file for readers that need a path.
func spool(input []byte, pattern string) (string, func(), error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	cleanup := func() { _ = os.Remove(path) }
	if _, err := io.Copy(tmp, bytes.NewReader(input)); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
