package paginate

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContentRoot returns the paginated content wrapper inside article, creating
// it on first use. Everything after the article's page header (or the whole
// article when there is no header) is moved into the wrapper, which is placed
// right after the header. Calling it again returns the existing wrapper.
func ContentRoot(article *html.Node, headerClass string) *html.Node {
	if article == nil {
		return nil
	}
	if existing := findFirst(article, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, ContentClass)
	}); existing != nil {
		return existing
	}

	var header *html.Node
	for c := article.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, atom.Header) && hasClass(c, headerClass) {
			header = c
			break
		}
	}

	var move []*html.Node
	start := article.FirstChild
	if header != nil {
		start = header.NextSibling
	}
	for c := start; c != nil; c = c.NextSibling {
		move = append(move, c)
	}

	wrap := newElement(atom.Div, ContentClass)
	if header != nil && header.NextSibling != nil {
		article.InsertBefore(wrap, header.NextSibling)
	} else if header != nil {
		article.AppendChild(wrap)
	} else {
		article.InsertBefore(wrap, article.FirstChild)
	}

	for _, n := range move {
		moveTo(wrap, n)
	}
	return wrap
}
