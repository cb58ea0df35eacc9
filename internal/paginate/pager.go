package paginate

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// insertPager puts the prev/next controls and page label at the top of the
// content root. It is a no-op when a pager is already present.
func (p *Paginator) insertPager() {
	if p.pager != nil {
		return
	}

	pager := newElement(atom.Div, PagerClass)
	pager.Attr = append(pager.Attr, html.Attribute{Key: "role", Val: "navigation"})

	left := newElement(atom.Div, "pager-left")
	left.AppendChild(p.pagerControl("pager-prev", "Previous page", p.opts.PrevAction, "M15 18l-6-6 6-6"))
	label := newElement(atom.Span, "pager-label")
	text := &html.Node{Type: html.TextNode}
	label.AppendChild(text)
	left.AppendChild(label)

	right := newElement(atom.Div, "pager-right")
	right.AppendChild(p.pagerControl("pager-next", "Next page", p.opts.NextAction, "M9 18l6-6-6-6"))

	pager.AppendChild(left)
	pager.AppendChild(right)
	p.root.InsertBefore(pager, p.root.FirstChild)

	p.pager = pager
	p.label = text
}

// pagerControl builds one arrow button, wrapped in a POST form when action
// is set.
func (p *Paginator) pagerControl(class, ariaLabel, action, path string) *html.Node {
	btn := newElement(atom.Button, class)
	btn.Attr = append(btn.Attr,
		html.Attribute{Key: "aria-label", Val: ariaLabel},
	)
	if action != "" {
		btn.Attr = append(btn.Attr, html.Attribute{Key: "type", Val: "submit"})
	} else {
		btn.Attr = append(btn.Attr, html.Attribute{Key: "type", Val: "button"})
	}

	svg := &html.Node{Type: html.ElementNode, Data: "svg", Namespace: "svg", Attr: []html.Attribute{
		{Key: "width", Val: "16"},
		{Key: "height", Val: "16"},
		{Key: "viewBox", Val: "0 0 24 24"},
		{Key: "fill", Val: "none"},
		{Key: "stroke", Val: "currentColor"},
		{Key: "stroke-width", Val: "2"},
		{Key: "aria-hidden", Val: "true"},
	}}
	svg.AppendChild(&html.Node{Type: html.ElementNode, Data: "path", Namespace: "svg", Attr: []html.Attribute{
		{Key: "d", Val: path},
	}})
	btn.AppendChild(svg)

	if action == "" {
		return btn
	}
	form := newElement(atom.Form, "pager-form")
	form.Attr = append(form.Attr,
		html.Attribute{Key: "method", Val: "post"},
		html.Attribute{Key: "action", Val: action},
	)
	form.AppendChild(btn)
	return form
}

// Label returns the current pager label text, or "" when not paged.
func (p *Paginator) Label() string {
	if p.label == nil {
		return ""
	}
	return p.label.Data
}
