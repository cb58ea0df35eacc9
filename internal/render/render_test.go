package render

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// bodyTags lists the element tags following the article header.
func bodyTags(doc *Document) []string {
	var out []string
	for c := doc.Article.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data == "header" {
			continue
		}
		out = append(out, c.Data)
	}
	return out
}

func renderHTML(t *testing.T, doc *Document) string {
	t.Helper()
	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Article); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestMarkdownRenderer_HeadingStructure(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	doc, err := NewMarkdownRenderer().Render(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", doc.Title)
	}
	if doc.Format != "markdown" {
		t.Errorf("expected format markdown, got %q", doc.Format)
	}

	got := strings.Join(bodyTags(doc), ",")
	want := "h1,p,h2,p,h3,p,h2,p"
	if got != want {
		t.Errorf("expected body %s, got %s", want, got)
	}

	out := renderHTML(t, doc)
	if !strings.Contains(out, `id="section-a"`) {
		t.Errorf("expected auto heading id in output, got %s", out)
	}
	if !strings.Contains(out, `class="doc-page-header"`) {
		t.Errorf("expected page header chrome, got %s", out)
	}
}

func TestMarkdownRenderer_NoHeadings(t *testing.T) {
	input := "Just some plain text.\n\nAnother paragraph here."
	doc, err := NewMarkdownRenderer().Render(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "plain" {
		t.Errorf("expected title from filename, got %q", doc.Title)
	}
	if got := strings.Join(bodyTags(doc), ","); got != "p,p" {
		t.Errorf("expected p,p, got %s", got)
	}
}

func TestMarkdownRenderer_GFMTable(t *testing.T) {
	input := "## Data\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	doc, err := NewMarkdownRenderer().Render(strings.NewReader(input), "t.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(bodyTags(doc), ","); got != "h2,table" {
		t.Errorf("expected h2,table, got %s", got)
	}
}

func TestMarkdownRenderer_EmptyInput(t *testing.T) {
	doc, err := NewMarkdownRenderer().Render(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(bodyTags(doc)); n != 0 {
		t.Errorf("expected no body elements, got %d", n)
	}
}

func TestHTMLRenderer_PrefersArticle(t *testing.T) {
	input := `<html><head><title>Page Title</title><script>x()</script></head><body>
<nav>menu</nav>
<article><h2>One</h2><p>a</p><script>track()</script><h2>Two</h2></article>
</body></html>`
	doc, err := (&HTMLRenderer{}).Render(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Page Title" {
		t.Errorf("expected title %q, got %q", "Page Title", doc.Title)
	}
	if got := strings.Join(bodyTags(doc), ","); got != "h2,p,h2" {
		t.Errorf("expected h2,p,h2, got %s", got)
	}
	if strings.Contains(renderHTML(t, doc), "track()") {
		t.Error("script content should be stripped")
	}
}

func TestHTMLRenderer_BodyFallback(t *testing.T) {
	input := `<body><h1>Heading</h1><p>text</p></body>`
	doc, err := (&HTMLRenderer{}).Render(strings.NewReader(input), "page.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Heading" {
		t.Errorf("expected h1 title, got %q", doc.Title)
	}
	if got := strings.Join(bodyTags(doc), ","); got != "h1,p" {
		t.Errorf("expected h1,p, got %s", got)
	}
}

func TestTextRenderer_Paragraphs(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n   \n\n\nThird paragraph."
	doc, err := (&TextRenderer{}).Render(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if got := strings.Join(bodyTags(doc), ","); got != "p,p,p" {
		t.Fatalf("expected 3 paragraphs, got %s", got)
	}
	first := doc.Article.FirstChild.NextSibling
	if got := textContent(first); got != "First paragraph line one. First paragraph line two." {
		t.Errorf("unexpected first paragraph %q", got)
	}
}

func TestCSVRenderer_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,qty\n")
	for i := 0; i < 45; i++ {
		b.WriteString("item,1\n")
	}
	doc, err := (&CSVRenderer{}).Render(strings.NewReader(b.String()), "stock.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(bodyTags(doc), ","); got != "h2,table,h2,table,h2,table" {
		t.Errorf("expected three batches, got %s", got)
	}
	out := renderHTML(t, doc)
	for _, want := range []string{"Rows 2-21", "Rows 22-41", "Rows 42-46", "<th>qty</th>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

func TestCSVRenderer_HeaderOnly(t *testing.T) {
	doc, err := (&CSVRenderer{}).Render(strings.NewReader("a,b\n"), "h.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(bodyTags(doc), ","); got != "table" {
		t.Errorf("expected a lone table, got %s", got)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"a.md", false},
		{"a.MARKDOWN", false},
		{"a.txt", false},
		{"a.csv", false},
		{"a.html", false},
		{"a.htm", false},
		{"a.pdf", false},
		{"a.docx", false},
		{"a.exe", true},
		{"noext", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename, Config{})
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): err = %v, wantErr %v", tt.filename, err, tt.wantErr)
		}
		if IsSupportedExtension(tt.filename) == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q) disagrees with ForFile", tt.filename)
		}
	}
}

func TestHeading_ClampsLevel(t *testing.T) {
	if got := heading(9, "x").Data; got != "h6" {
		t.Errorf("heading(9) = %s, want h6", got)
	}
	if got := heading(0, "x").Data; got != "h1" {
		t.Errorf("heading(0) = %s, want h1", got)
	}
}
