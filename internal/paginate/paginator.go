// Package paginate splits a rendered document's content root into a preamble
// and h2-delimited page sections and shows one section at a time. Original
// nodes are moved into wrapper elements, never cloned, and Disable puts the
// very same nodes back in their original order.
package paginate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class names and attributes written into the content root while paged.
const (
	ContentClass  = "paged-content"
	PreambleClass = "page-preamble"
	SectionClass  = "page-section"
	PagerClass    = "pager"

	AttrPaged     = "data-paged"
	AttrPageCount = "data-page-count"
	AttrPageIndex = "data-page-index"
)

// State is the externally visible page state.
type State struct {
	Paged bool `json:"paged"`
	Index int  `json:"index"`
	Count int  `json:"count"`
}

// Section describes one page for outlines and jump menus.
type Section struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// Options configures a Paginator.
type Options struct {
	Log *slog.Logger

	// PrevAction and NextAction, when set, wrap the pager buttons in POST
	// forms targeting these URLs.
	PrevAction string
	NextAction string
}

// Paginator manages paged mode for a single content root.
type Paginator struct {
	root    *html.Node
	docPath string
	prefs   *Prefs
	opts    Options
	log     *slog.Logger

	original []*html.Node
	preamble *html.Node
	sections []*html.Node
	pager    *html.Node
	label    *html.Node
	titled   bool
	index    int
}

// New binds a Paginator to root. docPath keys the persisted page index.
func New(root *html.Node, docPath string, prefs *Prefs, opts Options) *Paginator {
	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Paginator{
		root:    root,
		docPath: docPath,
		prefs:   prefs,
		opts:    opts,
		log:     log.With("doc", docPath),
	}
}

// Paged reports whether the paged structure is currently built.
func (p *Paginator) Paged() bool {
	return p.original != nil
}

// State returns the current page state. Count is zero when not paged.
func (p *Paginator) State() State {
	if !p.Paged() {
		return State{}
	}
	return State{Paged: true, Index: p.index, Count: len(p.sections)}
}

// Enable builds the paged structure if needed and shows the persisted page.
// It reports whether the root is paged afterwards; a root with no element
// children is left untouched.
func (p *Paginator) Enable(ctx context.Context) bool {
	if p.root == nil {
		return false
	}
	if p.Paged() {
		return true
	}

	original := childNodes(p.root)
	part := Split(original)
	if part == nil || len(part.Sections) < MinSections {
		p.log.Debug("pagination not applicable", "children", len(original))
		return false
	}

	detachChildren(p.root)

	p.preamble = newElement(atom.Div, PreambleClass)
	for _, n := range part.Preamble {
		p.preamble.AppendChild(n)
	}
	p.root.AppendChild(p.preamble)

	p.sections = make([]*html.Node, 0, len(part.Sections))
	for _, run := range part.Sections {
		sec := newElement(atom.Section, SectionClass)
		for _, n := range run {
			sec.AppendChild(n)
		}
		p.root.AppendChild(sec)
		p.sections = append(p.sections, sec)
	}

	p.original = original
	p.titled = findFirst(p.preamble, func(n *html.Node) bool { return isElement(n, atom.H1) }) != nil

	setAttr(p.root, AttrPaged, "true")
	setAttr(p.root, AttrPageCount, strconv.Itoa(len(p.sections)))
	p.insertPager()

	p.log.Debug("paged structure built", "sections", len(p.sections), "titled_preamble", p.titled)

	p.Goto(ctx, p.prefs.LoadIndex(ctx, p.docPath))
	return true
}

// Disable restores the root's original children and drops every wrapper.
func (p *Paginator) Disable() {
	if !p.Paged() {
		return
	}

	detachChildren(p.root)
	for _, n := range p.original {
		moveTo(p.root, n)
	}

	removeAttr(p.root, AttrPaged)
	removeAttr(p.root, AttrPageCount)
	removeAttr(p.root, AttrPageIndex)

	p.original = nil
	p.preamble = nil
	p.sections = nil
	p.pager = nil
	p.label = nil
	p.titled = false
	p.index = 0
}

// Goto shows page i, clamped to the valid range, and persists it.
func (p *Paginator) Goto(ctx context.Context, i int) State {
	if !p.Paged() {
		return State{}
	}
	count := len(p.sections)
	i = clamp(i, 0, count-1)

	p.index = i
	p.prefs.SaveIndex(ctx, p.docPath, i)

	// A preamble carrying the document title is shown once, on the first
	// page. Any other lead-in repeats on every page.
	setVisible(p.preamble, !p.titled || i == 0)
	for j, sec := range p.sections {
		setVisible(sec, j == i)
	}
	setAttr(p.root, AttrPageIndex, strconv.Itoa(i))
	if p.label != nil {
		p.label.Data = fmt.Sprintf("Page %d of %d", i+1, count)
	}
	return p.State()
}

// Next advances one page, wrapping from the last page to the first.
func (p *Paginator) Next(ctx context.Context) State {
	if !p.Paged() {
		return State{}
	}
	return p.Goto(ctx, (p.index+1)%len(p.sections))
}

// Prev goes back one page, wrapping from the first page to the last.
func (p *Paginator) Prev(ctx context.Context) State {
	if !p.Paged() {
		return State{}
	}
	n := len(p.sections)
	return p.Goto(ctx, (p.index-1+n)%n)
}

// Sections lists every page with the text of its opening heading. When not
// paged it reports the pages Enable would build.
func (p *Paginator) Sections() []Section {
	var runs [][]*html.Node
	if p.Paged() {
		for _, sec := range p.sections {
			runs = append(runs, childNodes(sec))
		}
	} else if p.root != nil {
		if part := Split(childNodes(p.root)); part != nil {
			runs = part.Sections
		}
	}

	out := make([]Section, 0, len(runs))
	for i, run := range runs {
		title := ""
		for _, n := range run {
			if isElement(n, Marker) {
				title = textContent(n)
				break
			}
		}
		out = append(out, Section{Index: i, Title: title})
	}
	return out
}

// Preamble returns the preamble wrapper, or nil when not paged.
func (p *Paginator) Preamble() *html.Node { return p.preamble }

// SectionNodes returns the section wrappers in page order.
func (p *Paginator) SectionNodes() []*html.Node {
	return append([]*html.Node(nil), p.sections...)
}

func clamp(n, lo, hi int) int {
	return max(lo, min(hi, n))
}
