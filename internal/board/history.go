package board

import "redstring/internal/geom"

type ActionType int

const (
	ActionAddNode ActionType = iota
	ActionDeleteNode
	ActionUpdateNode
	ActionMoveNode
	ActionAddLink
	ActionRemoveLink
	ActionReplaceLinks
	ActionReplaceDocument
)

// Action is one undoable edit. Redo replays Data, undo replays Inverse.
type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

type AddNodeData struct {
	Node  Node
	Index int
}

type DeleteNodeData struct {
	Node  Node
	Index int
	Links []IndexedLink
}

type NodeStateData struct {
	Node Node
}

type PositionData struct {
	ID  string
	Pos *geom.Point
}

type LinkData struct {
	Index int
	Link  Link
}

type LinksData struct {
	Links []Link
}

type DocumentData struct {
	Doc *Document
}

// History is the undo/redo stack of one document.
type History struct {
	undoStack []Action
	redoStack []Action
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Record pushes an already-applied action and clears the redo stack.
func (h *History) Record(actionType ActionType, data, inverse interface{}) {
	h.undoStack = append(h.undoStack, Action{Type: actionType, Data: data, Inverse: inverse})
	h.redoStack = h.redoStack[:0]
}

func (h *History) Undo(d *Document) bool {
	if len(h.undoStack) == 0 {
		return false
	}
	last := len(h.undoStack) - 1
	action := h.undoStack[last]
	h.undoStack = h.undoStack[:last]

	switch action.Type {
	case ActionAddNode:
		data := action.Inverse.(AddNodeData)
		d.DeleteNode(data.Node.ID)
	case ActionDeleteNode:
		data := action.Inverse.(DeleteNodeData)
		d.InsertNode(data.Index, data.Node)
		for _, l := range data.Links {
			d.InsertLink(l.Index, l.Link)
		}
	case ActionUpdateNode:
		data := action.Inverse.(NodeStateData)
		d.ReplaceNode(data.Node)
	case ActionMoveNode:
		data := action.Inverse.(PositionData)
		d.SetPosition(data.ID, data.Pos)
	case ActionAddLink:
		data := action.Inverse.(LinkData)
		d.RemoveLink(data.Index)
	case ActionRemoveLink:
		data := action.Inverse.(LinkData)
		d.InsertLink(data.Index, data.Link)
	case ActionReplaceLinks:
		data := action.Inverse.(LinksData)
		d.Links = cloneLinks(data.Links)
	case ActionReplaceDocument:
		data := action.Inverse.(DocumentData)
		replaceDocument(d, data.Doc)
	}

	h.redoStack = append(h.redoStack, action)
	return true
}

func (h *History) Redo(d *Document) bool {
	if len(h.redoStack) == 0 {
		return false
	}
	last := len(h.redoStack) - 1
	action := h.redoStack[last]
	h.redoStack = h.redoStack[:last]

	switch action.Type {
	case ActionAddNode:
		data := action.Data.(AddNodeData)
		d.InsertNode(data.Index, data.Node)
	case ActionDeleteNode:
		data := action.Data.(DeleteNodeData)
		d.DeleteNode(data.Node.ID)
	case ActionUpdateNode:
		data := action.Data.(NodeStateData)
		d.ReplaceNode(data.Node)
	case ActionMoveNode:
		data := action.Data.(PositionData)
		d.SetPosition(data.ID, data.Pos)
	case ActionAddLink:
		data := action.Data.(LinkData)
		d.InsertLink(data.Index, data.Link)
	case ActionRemoveLink:
		data := action.Data.(LinkData)
		d.RemoveLink(data.Index)
	case ActionReplaceLinks:
		data := action.Data.(LinksData)
		d.Links = cloneLinks(data.Links)
	case ActionReplaceDocument:
		data := action.Data.(DocumentData)
		replaceDocument(d, data.Doc)
	}

	h.undoStack = append(h.undoStack, action)
	return true
}

func cloneLinks(links []Link) []Link {
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l.Detached()
	}
	return out
}

func replaceDocument(d *Document, src *Document) {
	c := src.Clone()
	d.Nodes = c.Nodes
	d.Links = c.Links
}
