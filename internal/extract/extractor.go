package extract

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for content types and file extensions no
// extractor handles.
var ErrUnsupportedType = errors.New("unsupported document type")

// FromResponse extracts an article from a fetched body. An empty content type
// is sniffed from the body.
func FromResponse(body []byte, contentType string) (Article, error) {
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(body)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return FromHTML(body), nil
	case "text/plain":
		return FromText(body), nil
	case "text/markdown", "text/x-markdown":
		return FromMarkdown(body), nil
	case "application/pdf":
		return FromPDF(body)
	}
	return Article{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
}

// ForFile reads and extracts a local document, choosing the format by file
// extension. Documents without a title are named after the file.
func ForFile(path string) (Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Article{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var art Article
	switch ext {
	case ".html", ".htm":
		art = FromHTML(data)
	case ".md", ".markdown":
		art = FromMarkdown(data)
	case ".txt", "":
		art = FromText(data)
	case ".pdf":
		art, err = FromPDF(data)
	case ".docx":
		art, err = FromDOCX(data)
	default:
		return Article{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if err != nil {
		return Article{}, fmt.Errorf("%s: %w", path, err)
	}
	if art.Title == UntitledTitle {
		art.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return art, nil
}
