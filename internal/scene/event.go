package scene

import "redstring/internal/geom"

// Event is everything the scene reports to its host. The concrete types
// below are the only implementations.
type Event interface {
	event()
}

// Handler receives events synchronously, in the order they happen.
type Handler func(Event)

type NodeHovered struct{ ID string }

type NodeUnhovered struct{ ID string }

// NodeClicked is a press and release on a card body with no motion in
// between. It is sent for both clicks of a double click.
type NodeClicked struct{ ID string }

type NodeDoubleClicked struct{ ID string }

// NodeDragged is sent once a drag ends. The node already sits at To; From
// is nil when the node had no position before the drag.
type NodeDragged struct {
	ID   string
	From *geom.Point
	To   geom.Point
}

type EditRequested struct{ ID string }

type DeleteRequested struct{ ID string }

type ConnectRequested struct{ ID string }

// DetailsRequested comes from a click on the expanded preview panel.
type DetailsRequested struct{ ID string }

// LinkRemoved carries an index into the document's link list as it was
// when the click happened.
type LinkRemoved struct{ Index int }

func (NodeHovered) event()       {}
func (NodeUnhovered) event()     {}
func (NodeClicked) event()       {}
func (NodeDoubleClicked) event() {}
func (NodeDragged) event()       {}
func (EditRequested) event()     {}
func (DeleteRequested) event()   {}
func (ConnectRequested) event()  {}
func (DetailsRequested) event()  {}
func (LinkRemoved) event()       {}
