package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MarkdownRenderer handles Markdown files using goldmark.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer returns a renderer with GitHub-flavoured extensions and
// heading anchors enabled.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

func (p *MarkdownRenderer) Render(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := p.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	body, err := html.ParseFragment(&buf, element(atom.Div, ""))
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}
	return newDocument(filename, "markdown", "", body), nil
}
