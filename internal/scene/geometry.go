package scene

import (
	"math"

	"redstring/internal/board"
	"redstring/internal/geom"
)

// Card and preview sizes in world units.
const (
	NoteW = 360.0
	NoteH = 220.0

	PreviewW = 420.0
	PreviewH = 300.0

	// MaxSag caps how far a string hangs below its anchors.
	MaxSag = 120.0

	// DefaultHitWidth is the width of the invisible band around a string
	// that reacts to hover and click, in surface units. It spans more than
	// one 40-unit terminal row so every column of a string stays clickable.
	DefaultHitWidth = 48.0

	flattenSegments = 32
)

// PinLocal is where strings attach, relative to the card center.
var PinLocal = geom.Point{X: 0, Y: -NoteH/2 - 2}

// Position falls back to the origin for nodes that were never laid out.
func Position(n *board.Node) geom.Point {
	p, _ := n.Pos()
	return p
}

// NodeMatrix maps card-local coordinates to world coordinates.
func NodeMatrix(n *board.Node) geom.Affine {
	p := Position(n)
	return geom.Translate(p.X, p.Y).Mul(geom.Rotation(n.AngleDeg()))
}

// PinAnchor is the rotation-adjusted attachment point of a node.
func PinAnchor(n *board.Node) geom.Point {
	return Position(n).Add(PinLocal.Rotate(n.AngleDeg()))
}

// StringCurve is the sagging path between two anchors: control points at a
// third and two thirds of the horizontal span, both pushed down by
// min(120, dist/3).
func StringCurve(a, b geom.Point) geom.Cubic {
	dx, dy := b.X-a.X, b.Y-a.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		dist = 1
	}
	sag := math.Min(MaxSag, dist/3)
	return geom.Cubic{
		P0: a,
		P1: geom.Point{X: a.X + dx/3, Y: a.Y + sag},
		P2: geom.Point{X: a.X + 2*dx/3, Y: b.Y + sag},
		P3: b,
	}
}

// CardRect is the card in card-local coordinates.
var CardRect = geom.Rect{X: -NoteW / 2, Y: -NoteH / 2, W: NoteW, H: NoteH}

type ChipKind int

const (
	ChipEdit ChipKind = iota
	ChipConnect
	ChipDelete
)

func (c ChipKind) Label() string {
	switch c {
	case ChipEdit:
		return "Edit"
	case ChipConnect:
		return "Connect"
	case ChipDelete:
		return "Delete"
	}
	return ""
}

// Chip is a control region in card-local coordinates.
type Chip struct {
	Kind ChipKind
	Rect geom.Rect
}

var Chips = []Chip{
	{Kind: ChipEdit, Rect: geom.Rect{X: -NoteW/2 + 10, Y: -NoteH/2 + 8, W: 90, H: 36}},
	{Kind: ChipConnect, Rect: geom.Rect{X: NoteW/2 - 176, Y: -NoteH/2 - 2, W: 120, H: 36}},
	{Kind: ChipDelete, Rect: geom.Rect{X: NoteW/2 - 82, Y: NoteH/2 - 30, W: 78, H: 28}},
}

// PreviewMatrix maps preview-local coordinates to card-local ones. The
// panel hangs off the card's top-right corner and is counter-rotated so
// it reads upright.
func PreviewMatrix(n *board.Node) geom.Affine {
	return geom.Translate(NoteW/2+40, -NoteH/2-20).Mul(geom.Rotation(-n.AngleDeg()))
}

var PreviewRect = geom.Rect{W: PreviewW, H: PreviewH}
