// Package scene turns pointer input over a board into camera moves, node
// drags and intents for the host. It borrows the document and only ever
// writes node positions, and only while a drag is in progress.
package scene

import (
	"time"

	"redstring/internal/board"
	"redstring/internal/camera"
	"redstring/internal/geom"
)

// DoubleClickWindow is the longest gap between two clicks on the same
// card that still counts as a double click.
const DoubleClickWindow = 400 * time.Millisecond

// DefaultLabel is shown for a hovered link that has no reason.
const DefaultLabel = "Connected"

type GestureState int

const (
	Idle GestureState = iota
	PanningBackground
	DraggingNode
)

func (s GestureState) String() string {
	switch s {
	case PanningBackground:
		return "panning"
	case DraggingNode:
		return "dragging"
	}
	return "idle"
}

type Options struct {
	// ReadOnly hides the chips and drops edit, delete, connect and link
	// removal intents.
	ReadOnly bool
	// Draggable lets a press on a card start a drag.
	Draggable bool
	// HitWidth is the width of a link's hit band in surface units.
	HitWidth float64
}

// EditorOptions is the configuration of the editable board.
func EditorOptions() Options {
	return Options{Draggable: true, HitWidth: DefaultHitWidth}
}

// PublicOptions is the configuration of the read-only board.
func PublicOptions() Options {
	return Options{ReadOnly: true, HitWidth: DefaultHitWidth}
}

type hitKind int

const (
	hitBackground hitKind = iota
	hitLink
	hitChip
	hitPreview
	hitCard
)

type hit struct {
	kind hitKind
	node string
	link int
	chip ChipKind
}

// Label is the floating reason tag of the hovered link.
type Label struct {
	Index int
	Text  string
	At    geom.Point // world
}

type Scene struct {
	doc     *board.Document
	cam     *camera.Camera
	surf    camera.Surface
	opts    Options
	handler Handler
	now     func() time.Time

	state   GestureState
	press   hit
	pressed bool
	pressAt geom.Point
	moved   bool
	panPrev geom.Point
	drag    string
	dragPos *geom.Point

	hovered string
	label   *Label

	lastClickID string
	lastClickAt time.Time

	connectSource string
	connectTarget string
}

func New(doc *board.Document, cam *camera.Camera, surf camera.Surface, opts Options, handler Handler) *Scene {
	if opts.HitWidth <= 0 {
		opts.HitWidth = DefaultHitWidth
	}
	if handler == nil {
		handler = func(Event) {}
	}
	return &Scene{
		doc:     doc,
		cam:     cam,
		surf:    surf,
		opts:    opts,
		handler: handler,
		now:     time.Now,
	}
}

func (s *Scene) Document() *board.Document { return s.doc }
func (s *Scene) Camera() *camera.Camera     { return s.cam }
func (s *Scene) Surface() camera.Surface    { return s.surf }
func (s *Scene) Options() Options           { return s.opts }
func (s *Scene) State() GestureState        { return s.state }
func (s *Scene) Hovered() string            { return s.hovered }

// SetDocument swaps the borrowed document, abandoning any gesture.
func (s *Scene) SetDocument(doc *board.Document) {
	s.doc = doc
	s.state = Idle
	s.drag = ""
	s.label = nil
	if doc.Find(s.hovered) == nil {
		s.hovered = ""
	}
}

// SetClock replaces the time source used for double clicks.
func (s *Scene) SetClock(now func() time.Time) { s.now = now }

// SetConnect marks the cards highlighted by the host's connect flow.
func (s *Scene) SetConnect(source, target string) {
	s.connectSource, s.connectTarget = source, target
}

// HoverLabel returns the floating label, if a link is hovered.
func (s *Scene) HoverLabel() (Label, bool) {
	if s.label == nil {
		return Label{}, false
	}
	return *s.label, true
}

func (s *Scene) emit(e Event) { s.handler(e) }

// PointerDown starts a gesture. Only the first press of a gesture counts;
// presses arriving mid-gesture are ignored.
func (s *Scene) PointerDown(p geom.Point) {
	if s.state != Idle {
		return
	}
	h := s.hitTest(p)
	s.press = h
	s.pressed = true
	s.pressAt = p
	s.moved = false

	switch h.kind {
	case hitBackground:
		s.state = PanningBackground
		s.panPrev = camera.ScreenToSurface(s.surf, p)
		s.label = nil
	case hitCard:
		if !s.opts.Draggable {
			return
		}
		n := s.doc.Find(h.node)
		if n == nil {
			return
		}
		s.state = DraggingNode
		s.drag = n.ID
		s.dragPos = nil
		if pos, ok := n.Pos(); ok {
			s.dragPos = &pos
		}
	}
}

func (s *Scene) PointerMove(p geom.Point) {
	if p != s.pressAt {
		s.moved = true
	}
	switch s.state {
	case PanningBackground:
		cur := camera.ScreenToSurface(s.surf, p)
		d := cur.Sub(s.panPrev)
		s.cam.Pan(d.X, d.Y)
		s.panPrev = cur
	case DraggingNode:
		if n := s.doc.Find(s.drag); n != nil {
			n.SetPos(s.cam.ScreenToWorld(s.surf, p))
		}
	default:
		s.updateHover(p)
	}
}

func (s *Scene) PointerUp(p geom.Point) {
	prev, pressed := s.state, s.pressed
	s.state = Idle
	s.pressed = false

	switch prev {
	case DraggingNode:
		id := s.drag
		s.drag = ""
		if s.moved {
			s.finishDrag(id)
		} else {
			s.click(s.press)
		}
	case PanningBackground:
	default:
		if pressed && !s.moved && s.hitTest(p) == s.press {
			s.click(s.press)
		}
	}
	s.updateHover(p)
}

// PointerCancel abandons the gesture where it is, as when pointer capture
// is lost. A drag that already moved the node is still reported.
func (s *Scene) PointerCancel() {
	if s.state == DraggingNode && s.moved {
		s.finishDrag(s.drag)
	}
	s.state = Idle
	s.pressed = false
	s.drag = ""
}

func (s *Scene) finishDrag(id string) {
	n := s.doc.Find(id)
	if n == nil {
		return
	}
	to, _ := n.Pos()
	s.emit(NodeDragged{ID: id, From: s.dragPos, To: to})
}

// Wheel zooms around p. A drag in progress keeps going.
func (s *Scene) Wheel(p geom.Point, deltaY float64, ctrl bool) {
	s.cam.Zoom(s.surf, p, camera.WheelFactor(deltaY, ctrl))
	s.label = nil
}

func (s *Scene) ZoomIn() {
	s.cam.ZoomAtCenter(s.surf, camera.ButtonStep)
	s.label = nil
}

func (s *Scene) ZoomOut() {
	s.cam.ZoomAtCenter(s.surf, 1/camera.ButtonStep)
	s.label = nil
}

func (s *Scene) ResetView() {
	s.cam.Reset()
	s.label = nil
}

func (s *Scene) click(h hit) {
	switch h.kind {
	case hitLink:
		s.label = nil
		if !s.opts.ReadOnly {
			s.emit(LinkRemoved{Index: h.link})
		}
	case hitChip:
		if s.opts.ReadOnly {
			return
		}
		switch h.chip {
		case ChipEdit:
			s.emit(EditRequested{ID: h.node})
		case ChipConnect:
			s.emit(ConnectRequested{ID: h.node})
		case ChipDelete:
			s.emit(DeleteRequested{ID: h.node})
		}
	case hitPreview:
		s.emit(DetailsRequested{ID: h.node})
	case hitCard:
		now := s.now()
		s.emit(NodeClicked{ID: h.node})
		if s.lastClickID == h.node && now.Sub(s.lastClickAt) <= DoubleClickWindow {
			s.lastClickID = ""
			s.emit(NodeDoubleClicked{ID: h.node})
			return
		}
		s.lastClickID, s.lastClickAt = h.node, now
	}
}

func (s *Scene) updateHover(p geom.Point) {
	h := s.hitTest(p)

	if h.kind == hitLink {
		l := s.doc.Links[h.link]
		text := l.Reason
		if text == "" {
			text = DefaultLabel
		}
		s.label = &Label{Index: h.link, Text: text, At: s.cam.ScreenToWorld(s.surf, p)}
	} else {
		s.label = nil
	}

	id := ""
	if h.kind != hitBackground && h.kind != hitLink {
		id = h.node
	}
	if id == s.hovered {
		return
	}
	if s.hovered != "" {
		s.emit(NodeUnhovered{ID: s.hovered})
	}
	s.hovered = id
	if id != "" {
		s.emit(NodeHovered{ID: id})
	}
}

// LinkAt returns the index of the link whose hit band contains the device
// point p. Hover and click both go through it.
func (s *Scene) LinkAt(p geom.Point) (int, bool) {
	local := camera.ScreenToSurface(s.surf, p)
	m := s.cam.Matrix()
	half := s.opts.HitWidth / 2

	best, bestDist := -1, half
	for _, str := range s.Strings() {
		d := geom.DistToPolyline(local, str.Curve.Transform(m).Flatten(flattenSegments))
		if d <= bestDist {
			best, bestDist = str.Index, d
		}
	}
	return best, best >= 0
}

func (s *Scene) hitTest(p geom.Point) hit {
	if i, ok := s.LinkAt(p); ok {
		return hit{kind: hitLink, link: i}
	}

	w := s.cam.ScreenToWorld(s.surf, p)
	for i := len(s.doc.Nodes) - 1; i >= 0; i-- {
		n := s.doc.Nodes[i]
		inv, ok := NodeMatrix(n).Inverse()
		if !ok {
			continue
		}
		local := inv.Apply(w)
		open := n.ID == s.hovered

		if open && !s.opts.ReadOnly {
			for _, c := range Chips {
				if c.Rect.Contains(local) {
					return hit{kind: hitChip, node: n.ID, chip: c.Kind}
				}
			}
		}
		if open {
			if pinv, ok := PreviewMatrix(n).Inverse(); ok && PreviewRect.Contains(pinv.Apply(local)) {
				return hit{kind: hitPreview, node: n.ID}
			}
		}
		if CardRect.Contains(local) {
			return hit{kind: hitCard, node: n.ID}
		}
	}
	return hit{kind: hitBackground, link: -1}
}
