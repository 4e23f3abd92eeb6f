package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"redstring/internal/board"
	"redstring/internal/geom"
	"redstring/internal/kv"
	"redstring/internal/scene"
)

type pageSurface struct{}

func (pageSurface) ScreenCTM() geom.Affine { return geom.Translate(600, 400) }
func (pageSurface) Bounds() geom.Rect      { return geom.Rect{X: 50, Y: 40, W: 1100, H: 720} }

type failingStore struct{}

func (failingStore) Get(string) ([]byte, error) { return nil, errors.New("unavailable") }
func (failingStore) Set(string, []byte) error   { return errors.New("quota exceeded") }

func note(id string, x, y float64, genres ...string) *board.Node {
	n := &board.Node{ID: id, Title: id, Kind: board.KindMovie, Year: 2001, Genres: genres, Angle: board.Float(0)}
	n.SetPos(geom.Pt(x, y))
	return n
}

func seeded(t *testing.T, doc *board.Document) (*Editor, kv.Store) {
	t.Helper()
	store := kv.NewMemory()
	require.NoError(t, SaveDocument(store, EditorDataKey, doc))
	ed := NewEditor(store, pageSurface{}, Options{CameraKey: "editor-camera"}, zap.NewNop())
	return ed, store
}

func pos(t *testing.T, ed *Editor, id string) geom.Point {
	t.Helper()
	n := ed.Document().Find(id)
	require.NotNil(t, n, id)
	p, ok := n.Pos()
	require.True(t, ok, id)
	return p
}

func TestEmptyStoreStartsWithDemo(t *testing.T) {
	ed := NewEditor(kv.NewMemory(), pageSurface{}, Options{CameraKey: "editor-camera"}, nil)
	assert.Len(t, ed.Document().Nodes, 5)
	assert.Len(t, ed.Document().Links, 4)
}

func TestUnreadableBoardFallsBackToDemo(t *testing.T) {
	store := kv.NewMemory()
	require.NoError(t, store.Set(EditorDataKey, []byte("{not json")))
	doc, err := LoadOrDemo(store, EditorDataKey)
	assert.Error(t, err)
	assert.Equal(t, "inception", doc.Nodes[0].ID)
}

func TestNullNodesAreDropped(t *testing.T) {
	store := kv.NewMemory()
	raw := `{"nodes":[null,{"id":"a","title":"A","type":"movie","year":2001,"genres":[]},null],` +
		`"links":[{"source":"a","target":"a","reason":"self"}]}`
	require.NoError(t, store.Set(EditorDataKey, []byte(raw)))

	doc, found, err := LoadDocument(store, EditorDataKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, "a", doc.Nodes[0].ID)

	var ed *Editor
	assert.NotPanics(t, func() {
		ed = NewEditor(store, pageSurface{}, Options{CameraKey: "editor-camera"}, zap.NewNop())
	})
	require.Len(t, ed.Document().Nodes, 1)
	assert.NotNil(t, ed.Document().Find("a"))
}

func TestDragIsUndoable(t *testing.T) {
	ed, _ := seeded(t, &board.Document{Nodes: []*board.Node{note("a", 0, 0)}})
	sc := ed.Scene()
	start := sc.Camera().WorldToScreen(sc.Surface(), geom.Pt(0, 0))

	sc.PointerDown(start)
	sc.PointerMove(start.Add(geom.Pt(40, 10)))
	sc.PointerMove(start.Add(geom.Pt(100, 50)))
	sc.PointerUp(start.Add(geom.Pt(100, 50)))

	assert.Equal(t, geom.Pt(100, 50), pos(t, ed, "a"))
	require.True(t, ed.History().CanUndo())

	require.True(t, ed.Undo())
	assert.Equal(t, geom.Pt(0, 0), pos(t, ed, "a"))
	require.True(t, ed.Redo())
	assert.Equal(t, geom.Pt(100, 50), pos(t, ed, "a"))
}

func TestLinkClickRemovesOnlyThatLink(t *testing.T) {
	doc := &board.Document{
		Nodes: []*board.Node{note("a", -300, 0), note("b", 300, 0), note("c", -300, 800), note("d", 300, 800)},
		Links: []board.Link{
			{Source: board.Ref("c"), Target: board.Ref("d"), Reason: "first"},
			{Source: board.Ref("a"), Target: board.Ref("b"), Reason: "second"},
			{Source: board.Ref("a"), Target: board.Ref("d"), Reason: "third"},
		},
	}
	ed, _ := seeded(t, doc)
	sc := ed.Scene()

	var curve geom.Cubic
	for _, s := range sc.Strings() {
		if s.Index == 1 {
			curve = s.Curve
		}
	}
	p := sc.Camera().WorldToScreen(sc.Surface(), curve.At(0.5))
	i, ok := sc.LinkAt(p)
	require.True(t, ok)
	require.Equal(t, 1, i)

	sc.PointerMove(p)
	sc.PointerDown(p)
	sc.PointerUp(p)

	links := ed.Document().Links
	require.Len(t, links, 2)
	assert.Equal(t, "first", links[0].Reason)
	assert.Equal(t, "third", links[1].Reason)
	assert.Len(t, ed.Document().Nodes, 4)

	require.True(t, ed.Undo())
	require.Len(t, ed.Document().Links, 3)
	assert.Equal(t, "second", ed.Document().Links[1].Reason)
}

func TestConnectFlow(t *testing.T) {
	ed, _ := seeded(t, &board.Document{Nodes: []*board.Node{note("a", -300, 0), note("b", 300, 0)}})

	ed.HandleEvent(scene.ConnectRequested{ID: "a"})
	assert.Equal(t, "a", ed.PendingSource())

	ed.HandleEvent(scene.NodeClicked{ID: "a"})
	assert.Equal(t, Prompt{}, ed.TakePrompt(), "the source is not its own target")

	ed.HandleEvent(scene.NodeClicked{ID: "b"})
	assert.Equal(t, Prompt{Intent: IntentReason, ID: "b"}, ed.TakePrompt())
	require.True(t, ed.FinishConnect("Same director"))

	links := ed.Document().Links
	require.Len(t, links, 1)
	assert.Equal(t, "a", links[0].Source.NodeID())
	assert.Equal(t, "b", links[0].Target.NodeID())
	assert.Equal(t, "Same director", links[0].Reason)
	assert.Equal(t, board.DefaultStrength, links[0].Strength)
	assert.Empty(t, ed.PendingSource())
	assert.False(t, ed.FinishConnect("again"))

	ed.HandleEvent(scene.ConnectRequested{ID: "b"})
	ed.HandleEvent(scene.ConnectRequested{ID: "b"})
	assert.Empty(t, ed.PendingSource(), "second press toggles off")

	ed.HandleEvent(scene.NodeClicked{ID: "a"})
	assert.Equal(t, Prompt{}, ed.TakePrompt(), "a plain click asks for nothing")

	ed.HandleEvent(scene.NodeDoubleClicked{ID: "a"})
	assert.Equal(t, Prompt{Intent: IntentDetails, ID: "a"}, ed.TakePrompt())
}

func TestSaveNode(t *testing.T) {
	ed, _ := seeded(t, &board.Document{Nodes: []*board.Node{note("dune", 0, 0, "Sci-fi")}})
	ed.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	id, err := ed.SaveNode(board.Draft{Title: "Blade Runner 2049", Kind: board.KindMovie, Genres: "Sci-fi; Noir"}, "")
	require.NoError(t, err)
	assert.Equal(t, "blade-runner-2049", id)
	n := ed.Document().Find(id)
	require.NotNil(t, n)
	assert.Equal(t, 2026, n.Year)
	assert.Equal(t, []string{"Sci-fi", "Noir"}, n.Genres)
	assert.GreaterOrEqual(t, n.AngleDeg(), -4.0)
	assert.LessOrEqual(t, n.AngleDeg(), 4.0)
	_, placed := n.Pos()
	assert.True(t, placed)

	id, err = ed.SaveNode(board.Draft{Title: "Dune", Kind: board.KindBook}, "")
	require.NoError(t, err)
	assert.Equal(t, "dune", id)
	dune := ed.Document().Find("dune")
	assert.Equal(t, board.KindBook, dune.Kind)
	assert.Equal(t, []string{"Sci-fi"}, dune.Genres, "re-adding keeps genres")
	assert.Equal(t, 2001, dune.Year)

	_, err = ed.SaveNode(board.Draft{Title: "Dune", Kind: board.KindBook, Year: "1965"}, "dune")
	require.NoError(t, err)
	assert.Empty(t, dune.Genres, "editing with no genres clears them")
	assert.Equal(t, 1965, dune.Year)

	_, err = ed.SaveNode(board.Draft{Kind: board.KindBook}, "")
	assert.Error(t, err)

	require.True(t, ed.Undo())
	assert.Equal(t, []string{"Sci-fi"}, ed.Document().Find("dune").Genres)
	require.True(t, ed.Undo())
	require.True(t, ed.Undo())
	assert.Nil(t, ed.Document().Find("blade-runner-2049"))
}

func TestDeleteNodeIsUndoable(t *testing.T) {
	doc := &board.Document{
		Nodes: []*board.Node{note("a", 0, 0), note("b", 400, 0), note("c", 800, 0)},
		Links: []board.Link{
			{Source: board.Ref("a"), Target: board.Ref("b"), Reason: "ab"},
			{Source: board.Ref("a"), Target: board.Ref("c"), Reason: "ac"},
			{Source: board.Ref("b"), Target: board.Ref("c"), Reason: "bc"},
		},
	}
	ed, _ := seeded(t, doc)

	ed.HandleEvent(scene.DeleteRequested{ID: "b"})
	require.Len(t, ed.Document().Nodes, 2)
	require.Len(t, ed.Document().Links, 1)
	assert.Equal(t, "ac", ed.Document().Links[0].Reason)

	require.True(t, ed.Undo())
	require.Len(t, ed.Document().Nodes, 3)
	assert.Equal(t, "b", ed.Document().Nodes[1].ID)
	var reasons []string
	for _, l := range ed.Document().Links {
		reasons = append(reasons, l.Reason)
	}
	assert.Equal(t, []string{"ab", "ac", "bc"}, reasons)
}

func TestAutoConnectDuplicatesAndUndoes(t *testing.T) {
	ed, _ := seeded(t, &board.Document{Nodes: []*board.Node{note("a", 0, 0, "Sci-fi"), note("b", 400, 0, "Sci-fi")}})

	assert.Equal(t, 1, ed.AutoConnect())
	require.Len(t, ed.Document().Links, 1)
	assert.Equal(t, "Sci-fi", ed.Document().Links[0].Reason)

	assert.Equal(t, 1, ed.AutoConnect())
	assert.Len(t, ed.Document().Links, 2)

	require.True(t, ed.Undo())
	assert.Len(t, ed.Document().Links, 1)
}

func TestResetDemoIsUndoable(t *testing.T) {
	ed, _ := seeded(t, &board.Document{Nodes: []*board.Node{note("mine", 0, 0)}})
	ed.ResetDemo()
	assert.Len(t, ed.Document().Nodes, 5)
	require.True(t, ed.Undo())
	require.Len(t, ed.Document().Nodes, 1)
	assert.Equal(t, "mine", ed.Document().Nodes[0].ID)
}

func TestSaveAndPublishRoundTrip(t *testing.T) {
	ed, store := seeded(t, &board.Document{Nodes: []*board.Node{note("a", 0, 0, "Drama")}})
	_, err := ed.SaveNode(board.Draft{Title: "Heat", Kind: board.KindMovie, Genres: "Crime"}, "")
	require.NoError(t, err)

	require.NoError(t, ed.Save())
	saved, found, err := LoadDocument(store, EditorDataKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, saved.Nodes, 2)

	_, found, err = LoadDocument(store, PublicDataKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, ed.Publish())
	pub := NewPublic(store, pageSurface{}, Options{CameraKey: "public-camera"}, zap.NewNop())
	require.Len(t, pub.Document().Nodes, 2)
	assert.Equal(t, "heat", pub.Document().Nodes[1].ID)
	assert.True(t, pub.Scene().Options().ReadOnly)
}

func TestSaveFailuresSurface(t *testing.T) {
	ed := NewEditor(failingStore{}, pageSurface{}, Options{CameraKey: "editor-camera"}, zap.NewNop())
	require.Len(t, ed.Document().Nodes, 5)

	ed.Scene().Camera().Pan(10, 10)
	ed.Scene().ZoomIn()

	assert.ErrorContains(t, ed.Save(), "save failed")
	assert.ErrorContains(t, ed.Publish(), "publish failed")
}

func TestPublicSuggestions(t *testing.T) {
	store := kv.NewMemory()
	pub := NewPublic(store, pageSurface{}, Options{CameraKey: "public-camera"}, zap.NewNop())
	pub.now = func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) }

	s, err := pub.Suggest(" Paprika ", board.KindMovie, "Dreams again", "")
	require.NoError(t, err)
	assert.Equal(t, "Paprika", s.Title)

	_, err = pub.Suggest("Akira", board.KindMovie, "", "not-an-email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
	assert.Contains(t, err.Error(), "email must be a valid email")

	subs, err := LoadSubmissions(store)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, s.ID, subs[0].ID)
	assert.True(t, subs[0].CreatedAt.Equal(pub.now()))
}

func TestPublicOnlyOpensDetails(t *testing.T) {
	pub := NewPublic(kv.NewMemory(), pageSurface{}, Options{CameraKey: "public-camera"}, zap.NewNop())

	pub.HandleEvent(scene.NodeClicked{ID: "dark"})
	assert.Equal(t, Prompt{}, pub.TakePrompt())
	pub.HandleEvent(scene.NodeDoubleClicked{ID: "dark"})
	assert.Equal(t, Prompt{Intent: IntentDetails, ID: "dark"}, pub.TakePrompt())
}

func TestPublicReload(t *testing.T) {
	store := kv.NewMemory()
	pub := NewPublic(store, pageSurface{}, Options{CameraKey: "public-camera"}, zap.NewNop())
	require.Len(t, pub.Document().Nodes, 5)

	require.NoError(t, SaveDocument(store, PublicDataKey, &board.Document{Nodes: []*board.Node{note("solo", 0, 0)}}))
	require.NoError(t, pub.Reload())
	require.Len(t, pub.Document().Nodes, 1)
	assert.Same(t, pub.Document(), pub.Scene().Document())
}
