// Package board is the corkboard document: notes, the strings between
// them, and the edit history the host records changes into.
package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"redstring/internal/geom"
)

// Kind is the closed set of things a note can be about.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
	KindMusic Kind = "music"
	KindBook  Kind = "book"
)

var Kinds = []Kind{KindMovie, KindTV, KindMusic, KindBook}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Label is the upper-case form shown on cards ("MOVIE • 2010").
func (k Kind) Label() string {
	return strings.ToUpper(string(k))
}

// Next cycles through Kinds, used by the form's kind selector.
func (k Kind) Next() Kind {
	for i, known := range Kinds {
		if known == k {
			return Kinds[(i+1)%len(Kinds)]
		}
	}
	return KindMovie
}

type Node struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Kind      Kind     `json:"type"`
	Year      int      `json:"year"`
	Genres    []string `json:"genres"`
	Rating    *float64 `json:"rating,omitempty"`
	Angle     *float64 `json:"angle,omitempty"`
	Poster    string   `json:"poster,omitempty"`
	Review    string   `json:"review,omitempty"`
	Director  string   `json:"director,omitempty"`
	Streaming string   `json:"streaming,omitempty"`

	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// Pos reports the node position; ok is false until the node is laid out.
func (n *Node) Pos() (p geom.Point, ok bool) {
	if n.X == nil || n.Y == nil {
		return geom.Point{}, false
	}
	return geom.Point{X: *n.X, Y: *n.Y}, true
}

func (n *Node) SetPos(p geom.Point) {
	x, y := p.X, p.Y
	n.X, n.Y = &x, &y
}

func (n *Node) ClearPos() {
	n.X, n.Y = nil, nil
}

func (n *Node) AngleDeg() float64 {
	if n.Angle == nil {
		return 0
	}
	return *n.Angle
}

// Clone returns a deep copy.
func (n Node) Clone() Node {
	c := n
	c.Genres = append([]string(nil), n.Genres...)
	c.Rating = cloneFloat(n.Rating)
	c.Angle = cloneFloat(n.Angle)
	c.X = cloneFloat(n.X)
	c.Y = cloneFloat(n.Y)
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func Float(v float64) *float64 { return &v }

// Endpoint is one end of a link: a raw node ID, plus the node itself once
// the link has been resolved against a document.
type Endpoint struct {
	ID   string
	Node *Node
}

func Ref(id string) Endpoint { return Endpoint{ID: id} }

func (e Endpoint) NodeID() string {
	if e.Node != nil {
		return e.Node.ID
	}
	return e.ID
}

func (e Endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.NodeID())
}

// UnmarshalJSON accepts both a bare ID and a node object with an "id".
func (e *Endpoint) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*e = Endpoint{ID: id}
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("link endpoint: %w", err)
	}
	*e = Endpoint{ID: obj.ID}
	return nil
}

const DefaultStrength = 0.05

type Link struct {
	Source   Endpoint `json:"source"`
	Target   Endpoint `json:"target"`
	Reason   string   `json:"reason,omitempty"`
	Strength float64  `json:"strength,omitempty"`
}

// Detached drops resolved node references so the link can outlive the
// document it was resolved against.
func (l Link) Detached() Link {
	l.Source = Ref(l.Source.NodeID())
	l.Target = Ref(l.Target.NodeID())
	return l
}

func (l Link) Touches(id string) bool {
	return l.Source.NodeID() == id || l.Target.NodeID() == id
}

var (
	ErrDuplicateID = errors.New("node id already exists")
	ErrNoNode      = errors.New("no such node")
)

type Document struct {
	Nodes []*Node `json:"nodes"`
	Links []Link  `json:"links"`
}

func (d *Document) Index(id string) int {
	for i, n := range d.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) Find(id string) *Node {
	if i := d.Index(id); i >= 0 {
		return d.Nodes[i]
	}
	return nil
}

// Resolve returns both endpoints of l as nodes of d. ok is false when
// either end is missing from the document.
func (d *Document) Resolve(l Link) (source, target *Node, ok bool) {
	source = d.Find(l.Source.NodeID())
	target = d.Find(l.Target.NodeID())
	return source, target, source != nil && target != nil
}

// ResolveLinks stores direct node references in every resolvable endpoint.
func (d *Document) ResolveLinks() {
	for i := range d.Links {
		if s, t, ok := d.Resolve(d.Links[i]); ok {
			d.Links[i].Source.Node = s
			d.Links[i].Target.Node = t
		}
	}
}

func (d *Document) Clone() *Document {
	c := &Document{
		Nodes: make([]*Node, len(d.Nodes)),
		Links: make([]Link, len(d.Links)),
	}
	for i, n := range d.Nodes {
		nc := n.Clone()
		c.Nodes[i] = &nc
	}
	for i, l := range d.Links {
		c.Links[i] = l.Detached()
	}
	return c
}

// CloneLinks copies the link list with endpoints detached.
func (d *Document) CloneLinks() []Link {
	out := make([]Link, len(d.Links))
	for i, l := range d.Links {
		out[i] = l.Detached()
	}
	return out
}

func (d *Document) AddNode(n Node) error {
	if d.Index(n.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	d.InsertNode(len(d.Nodes), n)
	return nil
}

func (d *Document) InsertNode(i int, n Node) {
	if i < 0 || i > len(d.Nodes) {
		i = len(d.Nodes)
	}
	nc := n.Clone()
	d.Nodes = append(d.Nodes, nil)
	copy(d.Nodes[i+1:], d.Nodes[i:])
	d.Nodes[i] = &nc
}

// IndexedLink remembers where a link sat so a delete can be undone in place.
type IndexedLink struct {
	Index int
	Link  Link
}

// DeleteNode removes the node and every link touching it.
func (d *Document) DeleteNode(id string) (removed Node, index int, links []IndexedLink, ok bool) {
	index = d.Index(id)
	if index < 0 {
		return Node{}, -1, nil, false
	}
	removed = d.Nodes[index].Clone()
	d.Nodes = append(d.Nodes[:index], d.Nodes[index+1:]...)

	kept := d.Links[:0]
	for i, l := range d.Links {
		if l.Touches(id) {
			links = append(links, IndexedLink{Index: i, Link: l.Detached()})
			continue
		}
		kept = append(kept, l)
	}
	d.Links = kept
	return removed, index, links, true
}

// ReplaceNode overwrites the stored node with the same ID in place, so
// references held by the scene stay valid.
func (d *Document) ReplaceNode(n Node) error {
	cur := d.Find(n.ID)
	if cur == nil {
		return fmt.Errorf("%w: %s", ErrNoNode, n.ID)
	}
	*cur = n.Clone()
	return nil
}

func (d *Document) SetPosition(id string, p *geom.Point) error {
	n := d.Find(id)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNoNode, id)
	}
	if p == nil {
		n.ClearPos()
	} else {
		n.SetPos(*p)
	}
	return nil
}

// AddLink appends l and returns its index.
func (d *Document) AddLink(l Link) int {
	d.Links = append(d.Links, l.Detached())
	return len(d.Links) - 1
}

func (d *Document) InsertLink(i int, l Link) {
	if i < 0 || i > len(d.Links) {
		i = len(d.Links)
	}
	d.Links = append(d.Links, Link{})
	copy(d.Links[i+1:], d.Links[i:])
	d.Links[i] = l.Detached()
}

func (d *Document) RemoveLink(i int) (Link, bool) {
	if i < 0 || i >= len(d.Links) {
		return Link{}, false
	}
	l := d.Links[i]
	d.Links = append(d.Links[:i], d.Links[i+1:]...)
	return l.Detached(), true
}

// Neighbor is a node linked to another, with the reason of that link.
type Neighbor struct {
	Node   *Node
	Reason string
}

// Neighbors lists the nodes linked to id in link order, skipping dangling
// links.
func (d *Document) Neighbors(id string) []Neighbor {
	var out []Neighbor
	for _, l := range d.Links {
		s, t := l.Source.NodeID(), l.Target.NodeID()
		var other string
		switch id {
		case s:
			other = t
		case t:
			other = s
		default:
			continue
		}
		if n := d.Find(other); n != nil {
			out = append(out, Neighbor{Node: n, Reason: l.Reason})
		}
	}
	return out
}
