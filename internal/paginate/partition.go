package paginate

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker is the heading rank that opens a new page section.
const Marker = atom.H2

// MinSections is the smallest section count a build accepts.
const MinSections = 1

// Partition is the split of a content root's children into a preamble and
// page sections. Node pointers are the original children; nothing is copied.
type Partition struct {
	Preamble []*html.Node
	Sections [][]*html.Node
}

// Split classifies children into a preamble and sections. It does not move
// any node. A nil result means the sequence has no element children and
// pagination does not apply.
//
// Everything before the first marker belongs to the preamble. Each marker
// opens a section that runs up to the next marker. With no marker at all the
// preamble takes every child and a single empty section is emitted, so a
// successful split always has at least one section.
func Split(children []*html.Node) *Partition {
	first := -1
	elements := 0
	for i, c := range children {
		if c.Type != html.ElementNode {
			continue
		}
		elements++
		if first < 0 && isElement(c, Marker) {
			first = i
		}
	}
	if elements == 0 {
		return nil
	}

	if first < 0 {
		return &Partition{
			Preamble: append([]*html.Node(nil), children...),
			Sections: [][]*html.Node{{}},
		}
	}

	p := &Partition{Preamble: append([]*html.Node(nil), children[:first]...)}
	var cur []*html.Node
	for _, c := range children[first:] {
		if isElement(c, Marker) && len(cur) > 0 {
			p.Sections = append(p.Sections, cur)
			cur = nil
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 {
		p.Sections = append(p.Sections, cur)
	}
	return p
}

// Flatten returns the preamble followed by every section, in order.
func (p *Partition) Flatten() []*html.Node {
	out := append([]*html.Node(nil), p.Preamble...)
	for _, s := range p.Sections {
		out = append(out, s...)
	}
	return out
}
