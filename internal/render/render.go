// Package render turns source documents into an HTML article tree that the
// viewer serves and the paginator operates on.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class names of the article chrome.
const (
	ArticleClass = "doc-article"
	HeaderClass  = "doc-page-header"
)

// Document is a rendered document.
type Document struct {
	Path    string
	Title   string
	Format  string
	Article *html.Node // <article class="doc-article">
}

// Renderer converts raw document bytes into a Document.
type Renderer interface {
	Render(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can render.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Config carries renderer settings that come from service configuration.
type Config struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate renderer for a filename.
func ForFile(filename string, cfg Config) (Renderer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextRenderer{}, nil
	case ".md", ".markdown":
		return NewMarkdownRenderer(), nil
	case ".csv":
		return &CSVRenderer{}, nil
	case ".html", ".htm":
		return &HTMLRenderer{}, nil
	case ".pdf":
		return &PDFRenderer{FallbackPdftotext: cfg.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// newDocument wraps body in the article chrome. The title is the text of the
// first h1 in body, then fallback, then the file name without extension.
func newDocument(filename, format, fallback string, body []*html.Node) *Document {
	title := ""
	for _, n := range body {
		if h := findElement(n, atom.H1); h != nil {
			title = textContent(h)
			break
		}
	}
	if title == "" {
		title = fallback
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	article := element(atom.Article, ArticleClass)
	header := element(atom.Header, HeaderClass)
	name := element(atom.Span, "doc-file")
	name.AppendChild(text(filepath.Base(filename)))
	header.AppendChild(name)
	article.AppendChild(header)
	for _, n := range body {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		article.AppendChild(n)
	}

	return &Document{
		Title:   title,
		Format:  format,
		Article: article,
	}
}
