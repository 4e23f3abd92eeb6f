package scene

import (
	"redstring/internal/board"
	"redstring/internal/geom"
)

// Card is what a renderer needs to draw one note.
type Card struct {
	Node      *board.Node
	Matrix    geom.Affine // card-local to world
	Hovered   bool
	Highlight bool
	// Chips is empty unless the card is hovered on an editable board.
	Chips       []Chip
	PreviewOpen bool
}

// String is a drawable link. Index points into the document's links.
type String struct {
	Index   int
	Curve   geom.Cubic // world
	Reason  string
	Hovered bool
}

// Cards lists every node in draw order. Nodes without a position are
// drawn at the origin.
func (s *Scene) Cards() []Card {
	out := make([]Card, 0, len(s.doc.Nodes))
	for _, n := range s.doc.Nodes {
		c := Card{
			Node:      n,
			Matrix:    NodeMatrix(n),
			Hovered:   n.ID == s.hovered,
			Highlight: n.ID != "" && (n.ID == s.connectSource || n.ID == s.connectTarget),
		}
		if c.Hovered {
			c.PreviewOpen = true
			if !s.opts.ReadOnly {
				c.Chips = Chips
			}
		}
		out = append(out, c)
	}
	return out
}

// Strings lists the links that can be drawn: both ends must resolve to a
// node with a position. Anything else is skipped without affecting the
// rest.
func (s *Scene) Strings() []String {
	var out []String
	for i, l := range s.doc.Links {
		src, dst, ok := s.doc.Resolve(l)
		if !ok {
			continue
		}
		if _, ok := src.Pos(); !ok {
			continue
		}
		if _, ok := dst.Pos(); !ok {
			continue
		}
		out = append(out, String{
			Index:   i,
			Curve:   StringCurve(PinAnchor(src), PinAnchor(dst)),
			Reason:  l.Reason,
			Hovered: s.label != nil && s.label.Index == i,
		})
	}
	return out
}
