// Package app is the host side of a board: it owns the document, routes
// scene events into the undo history and talks to the store.
package app

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"redstring/internal/board"
	"redstring/internal/camera"
	"redstring/internal/geom"
	"redstring/internal/kv"
	"redstring/internal/scene"
)

// Intent is something the editor wants the user interface to open.
type Intent int

const (
	IntentNone Intent = iota
	IntentEdit
	IntentDetails
	IntentReason
)

type Prompt struct {
	Intent Intent
	ID     string
}

type Options struct {
	CameraKey string
	HitWidth  float64
}

type Editor struct {
	store  kv.Store
	logger *zap.Logger
	rng    *rand.Rand
	now    func() time.Time

	doc     *board.Document
	history board.History
	scene   *scene.Scene

	pendingSource string
	pendingTarget string
	prompt        Prompt
}

// NewEditor loads the working board and its camera. An unreadable board
// is replaced by the demo and logged; it never stops the editor.
func NewEditor(store kv.Store, surf camera.Surface, opts Options, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := LoadOrDemo(store, EditorDataKey)
	if err != nil {
		logger.Warn("editor board unreadable, using demo", zap.Error(err))
	}

	ed := &Editor{
		store:  store,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
		doc:    doc,
	}
	sopts := scene.EditorOptions()
	if opts.HitWidth > 0 {
		sopts.HitWidth = opts.HitWidth
	}
	cam := camera.New(store, opts.CameraKey, logger)
	ed.scene = scene.New(doc, cam, surf, sopts, ed.HandleEvent)
	return ed
}

func (ed *Editor) Document() *board.Document { return ed.doc }
func (ed *Editor) Scene() *scene.Scene       { return ed.scene }
func (ed *Editor) History() *board.History   { return &ed.history }

// PendingSource is the note picked with Connect, if any.
func (ed *Editor) PendingSource() string { return ed.pendingSource }
func (ed *Editor) PendingTarget() string { return ed.pendingTarget }

// TakePrompt returns the last requested prompt and clears it.
func (ed *Editor) TakePrompt() Prompt {
	p := ed.prompt
	ed.prompt = Prompt{}
	return p
}

func (ed *Editor) recordAction(actionType board.ActionType, data, inverse interface{}) {
	ed.history.Record(actionType, data, inverse)
}

// HandleEvent is the scene handler of the editor.
func (ed *Editor) HandleEvent(e scene.Event) {
	switch e := e.(type) {
	case scene.NodeDragged:
		to := e.To
		ed.recordAction(board.ActionMoveNode,
			board.PositionData{ID: e.ID, Pos: &to},
			board.PositionData{ID: e.ID, Pos: e.From})
		ed.logger.Debug("node moved", zap.String("id", e.ID), zap.Float64("x", to.X), zap.Float64("y", to.Y))
	case scene.NodeClicked:
		// A plain click only matters while connecting; editing goes
		// through the Edit chip so a double click can still reach details.
		if ed.pendingSource != "" {
			ed.pickTarget(e.ID)
		}
	case scene.NodeDoubleClicked:
		if ed.pendingSource == "" {
			ed.prompt = Prompt{Intent: IntentDetails, ID: e.ID}
		}
	case scene.DetailsRequested:
		ed.prompt = Prompt{Intent: IntentDetails, ID: e.ID}
	case scene.EditRequested:
		ed.prompt = Prompt{Intent: IntentEdit, ID: e.ID}
	case scene.ConnectRequested:
		ed.StartConnect(e.ID)
	case scene.DeleteRequested:
		ed.DeleteNode(e.ID)
	case scene.LinkRemoved:
		ed.RemoveLink(e.Index)
	}
}

// StartConnect toggles id as the source of a new link.
func (ed *Editor) StartConnect(id string) {
	if ed.pendingSource == id {
		ed.CancelConnect()
		return
	}
	ed.pendingSource = id
	ed.pendingTarget = ""
	ed.syncConnect()
}

func (ed *Editor) pickTarget(id string) {
	if id == ed.pendingSource {
		return
	}
	ed.pendingTarget = id
	ed.prompt = Prompt{Intent: IntentReason, ID: id}
	ed.syncConnect()
}

// FinishConnect appends the pending link with the given reason.
func (ed *Editor) FinishConnect(reason string) bool {
	if ed.pendingSource == "" || ed.pendingTarget == "" {
		return false
	}
	link := board.Link{
		Source:   board.Ref(ed.pendingSource),
		Target:   board.Ref(ed.pendingTarget),
		Reason:   reason,
		Strength: board.DefaultStrength,
	}
	i := ed.doc.AddLink(link)
	ed.recordAction(board.ActionAddLink, board.LinkData{Index: i, Link: link}, board.LinkData{Index: i, Link: link})
	ed.CancelConnect()
	return true
}

func (ed *Editor) CancelConnect() {
	ed.pendingSource = ""
	ed.pendingTarget = ""
	if ed.prompt.Intent == IntentReason {
		ed.prompt = Prompt{}
	}
	ed.syncConnect()
}

func (ed *Editor) syncConnect() {
	ed.scene.SetConnect(ed.pendingSource, ed.pendingTarget)
}

// SaveNode applies the node form. With editingID empty the draft adds a
// note, or updates the note that already has the title's slug.
func (ed *Editor) SaveNode(d board.Draft, editingID string) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	if editingID != "" {
		cur := ed.doc.Find(editingID)
		if cur == nil {
			return "", fmt.Errorf("%w: %s", board.ErrNoNode, editingID)
		}
		return editingID, ed.updateNode(*cur, d.MergeInto(*cur, false))
	}

	n := d.NewNode(ed.now().Year(), ed.rng)
	if n.ID == "" {
		return "", fmt.Errorf("title %q has no letters or digits", d.Title)
	}
	if cur := ed.doc.Find(n.ID); cur != nil {
		return n.ID, ed.updateNode(*cur, d.MergeInto(*cur, true))
	}
	if err := ed.doc.AddNode(n); err != nil {
		return "", err
	}
	idx := ed.doc.Index(n.ID)
	ed.recordAction(board.ActionAddNode, board.AddNodeData{Node: n.Clone(), Index: idx}, board.AddNodeData{Node: n.Clone(), Index: idx})
	ed.logger.Debug("node added", zap.String("id", n.ID))
	return n.ID, nil
}

// SaveDetails applies the full item form to id.
func (ed *Editor) SaveDetails(id string, d board.Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	cur := ed.doc.Find(id)
	if cur == nil {
		return fmt.Errorf("%w: %s", board.ErrNoNode, id)
	}
	return ed.updateNode(*cur, d.ApplyDetails(*cur))
}

func (ed *Editor) updateNode(before, after board.Node) error {
	before = before.Clone()
	if err := ed.doc.ReplaceNode(after); err != nil {
		return err
	}
	ed.recordAction(board.ActionUpdateNode, board.NodeStateData{Node: after.Clone()}, board.NodeStateData{Node: before})
	return nil
}

func (ed *Editor) DeleteNode(id string) bool {
	n, idx, links, ok := ed.doc.DeleteNode(id)
	if !ok {
		return false
	}
	data := board.DeleteNodeData{Node: n, Index: idx, Links: links}
	ed.recordAction(board.ActionDeleteNode, data, data)
	if ed.pendingSource == id || ed.pendingTarget == id {
		ed.CancelConnect()
	}
	if ed.prompt.ID == id {
		ed.prompt = Prompt{}
	}
	ed.scene.SetDocument(ed.doc)
	return true
}

// RemoveLink removes exactly the link at index i.
func (ed *Editor) RemoveLink(i int) bool {
	l, ok := ed.doc.RemoveLink(i)
	if !ok {
		return false
	}
	data := board.LinkData{Index: i, Link: l}
	ed.recordAction(board.ActionRemoveLink, data, data)
	ed.logger.Debug("link removed", zap.Int("index", i), zap.String("reason", l.Reason))
	return true
}

// AutoConnect appends a link for every pair of notes sharing a genre. It
// does not look at existing links, so running it twice duplicates them.
func (ed *Editor) AutoConnect() int {
	before := ed.doc.CloneLinks()
	added := board.AutoConnect(ed.doc)
	ed.recordAction(board.ActionReplaceLinks, board.LinksData{Links: ed.doc.CloneLinks()}, board.LinksData{Links: before})
	return len(added)
}

// ResetDemo replaces the board with the demo board.
func (ed *Editor) ResetDemo() {
	before := ed.doc.Clone()
	fresh := board.Demo()
	ed.doc.Nodes = fresh.Nodes
	ed.doc.Links = fresh.Links
	ed.recordAction(board.ActionReplaceDocument, board.DocumentData{Doc: fresh.Clone()}, board.DocumentData{Doc: before})
	ed.CancelConnect()
	ed.prompt = Prompt{}
	ed.scene.SetDocument(ed.doc)
}

func (ed *Editor) Undo() bool {
	if !ed.history.Undo(ed.doc) {
		return false
	}
	ed.afterHistory()
	return true
}

func (ed *Editor) Redo() bool {
	if !ed.history.Redo(ed.doc) {
		return false
	}
	ed.afterHistory()
	return true
}

func (ed *Editor) afterHistory() {
	ed.doc.ResolveLinks()
	if ed.doc.Find(ed.pendingSource) == nil || (ed.pendingTarget != "" && ed.doc.Find(ed.pendingTarget) == nil) {
		ed.CancelConnect()
	}
	ed.scene.SetDocument(ed.doc)
}

// Save writes the working board. Unlike camera state, failures are
// returned to the caller.
func (ed *Editor) Save() error {
	if err := SaveDocument(ed.store, EditorDataKey, ed.doc); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	ed.logger.Info("board saved", zap.Int("nodes", len(ed.doc.Nodes)), zap.Int("links", len(ed.doc.Links)))
	return nil
}

// Publish copies the working board to the public slot.
func (ed *Editor) Publish() error {
	if err := SaveDocument(ed.store, PublicDataKey, ed.doc.Clone()); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	ed.logger.Info("board published", zap.Int("nodes", len(ed.doc.Nodes)))
	return nil
}

func (ed *Editor) Submissions() ([]board.Submission, error) {
	return LoadSubmissions(ed.store)
}

// Move places a note through the history, as a keyboard alternative to
// dragging.
func (ed *Editor) Move(id string, to geom.Point) error {
	n := ed.doc.Find(id)
	if n == nil {
		return fmt.Errorf("%w: %s", board.ErrNoNode, id)
	}
	var from *geom.Point
	if p, ok := n.Pos(); ok {
		from = &p
	}
	n.SetPos(to)
	ed.recordAction(board.ActionMoveNode, board.PositionData{ID: id, Pos: &to}, board.PositionData{ID: id, Pos: from})
	return nil
}
