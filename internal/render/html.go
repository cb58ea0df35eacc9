package render

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLRenderer handles HTML files. The content is taken from the first
// <article> when present, otherwise from <body>.
type HTMLRenderer struct{}

func (p *HTMLRenderer) Render(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var title string
	if t := findElement(doc, atom.Title); t != nil {
		title = textContent(t)
	}

	src := findElement(doc, atom.Article)
	if src == nil {
		src = findElement(doc, atom.Body)
	}
	if src == nil {
		src = doc
	}
	stripElements(src, atom.Script, atom.Style, atom.Noscript)

	return newDocument(filename, "html", title, detachChildren(src)), nil
}

// stripElements removes every descendant of n with one of the given tags.
func stripElements(n *html.Node, tags ...atom.Atom) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		drop := false
		if c.Type == html.ElementNode {
			for _, a := range tags {
				if c.DataAtom == a {
					drop = true
					break
				}
			}
		}
		if drop {
			n.RemoveChild(c)
		} else {
			stripElements(c, tags...)
		}
		c = next
	}
}
