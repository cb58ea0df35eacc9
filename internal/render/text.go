package render

import (
	"bufio"
	"io"
	"strings"
)

// TextRenderer handles plain text files. Blank lines separate paragraphs.
type TextRenderer struct{}

func (p *TextRenderer) Render(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b strings.Builder
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return newDocument(filename, "text", "", paragraphs(b.String())), nil
}
