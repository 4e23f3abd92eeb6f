package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"redstring/internal/app"
	"redstring/internal/board"
	"redstring/internal/config"
	"redstring/internal/geom"
	"redstring/internal/kv"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SaveDirectory = t.TempDir()
	cfg.Confirmations = false
	return cfg
}

func note(id, title string, x, y float64) *board.Node {
	n := &board.Node{ID: id, Title: title, Kind: board.KindMovie, Year: 2001, Genres: []string{}, Angle: board.Float(0)}
	n.SetPos(geom.Pt(x, y))
	return n
}

// editorWith stores doc as the working board and opens an 80x25 editor:
// the board gets 24 rows and cell (40, 12) looks at the world origin.
func editorWith(t *testing.T, cfg *config.Config, doc *board.Document) (model, kv.Store) {
	t.Helper()
	store := kv.NewMemory()
	require.NoError(t, app.SaveDocument(store, app.EditorDataKey, doc))
	m := newEditorModel(store, cfg, zap.NewNop())
	return send(m, tea.WindowSizeMsg{Width: 80, Height: 25}), store
}

func send(m model, msgs ...tea.Msg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func special(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func hover(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
}

func pos(t *testing.T, doc *board.Document, id string) geom.Point {
	t.Helper()
	n := doc.Find(id)
	require.NotNil(t, n, id)
	p, ok := n.Pos()
	require.True(t, ok, id)
	return p
}

func singleDoc() *board.Document {
	return &board.Document{Nodes: []*board.Node{note("dune", "Dune", 0, 0)}, Links: []board.Link{}}
}

func pairDoc() *board.Document {
	return &board.Document{
		Nodes: []*board.Node{note("a", "Alien", -600, 0), note("b", "Blade Runner", 600, 0)},
		Links: []board.Link{},
	}
}

func TestResizeSetsViewport(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.vp.Cols)
	assert.Equal(t, 39, m.vp.Rows)
}

func TestMouseDragAndUndo(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	doc := m.editor.Document()

	m = send(m, press(40, 12), motion(43, 12), motion(45, 12), release(45, 12))
	assert.Equal(t, geom.Pt(100, 0), pos(t, doc, "dune"))

	m = send(m, keys("u"))
	assert.Equal(t, geom.Pt(0, 0), pos(t, doc, "dune"))
	m = send(m, keys("U"))
	assert.Equal(t, geom.Pt(100, 0), pos(t, doc, "dune"))
	assert.Equal(t, ModeBoard, m.mode)
}

func TestMousePanAndWheel(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	cam := m.scene().Camera()

	m = send(m, press(5, 2), motion(7, 2), release(7, 2))
	assert.InDelta(t, 40, cam.State().TX, 1e-9)
	assert.Equal(t, geom.Pt(0, 0), pos(t, m.editor.Document(), "dune"))

	send(m, tea.MouseMsg{X: 40, Y: 12, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.InDelta(t, 1.1, cam.State().K, 1e-9)
}

func TestBlurCancelsDrag(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, press(40, 12), motion(42, 12), tea.BlurMsg{})
	assert.Equal(t, "idle", m.scene().State().String())
	assert.True(t, m.editor.History().CanUndo())
}

func TestKeyboardPanAndZoom(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	cam := m.scene().Camera()

	send(m, keys("l"))
	assert.InDelta(t, -80, cam.State().TX, 1e-9)
	send(m, keys("+"))
	assert.InDelta(t, 1.1, cam.State().K, 1e-9)
	send(m, keys("0"))
	assert.Equal(t, 1.0, cam.State().K)
	assert.Equal(t, 0.0, cam.State().TX)
}

func TestAddNoteThroughForm(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())

	m = send(m, keys("n"))
	require.Equal(t, ModeNodeForm, m.mode)

	m = send(m, keys("Arrival"), special(tea.KeyEnter), special(tea.KeyEnter), special(tea.KeyEnter), keys("sci-fi; drama"), special(tea.KeyEnter))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Equal(t, "Saved arrival", m.successMessage)

	n := m.editor.Document().Find("arrival")
	require.NotNil(t, n)
	assert.Equal(t, []string{"sci-fi", "drama"}, n.Genres)
	assert.Equal(t, time.Now().Year(), n.Year)
}

func TestFormShowsValidationError(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, keys("n"), special(tea.KeyCtrlS))
	assert.Equal(t, ModeNodeForm, m.mode)
	assert.Equal(t, "title is required", m.form.err)

	m = send(m, special(tea.KeyEsc))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Len(t, m.editor.Document().Nodes, 1)
}

func TestKindSelectorCycles(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, keys("n"), keys("Dark"), special(tea.KeyTab), special(tea.KeyRight))
	assert.Equal(t, board.KindTV, m.form.kind("Kind"))
	m = send(m, special(tea.KeyLeft), special(tea.KeyLeft))
	assert.Equal(t, board.KindBook, m.form.kind("Kind"))
}

func TestPasteIntoForm(t *testing.T) {
	old := readClipboard
	readClipboard = func() (string, error) { return "{\\rtf1\\ansi Blade\\par Runner}", nil }
	t.Cleanup(func() { readClipboard = old })

	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, keys("n"), special(tea.KeyCtrlV))
	assert.Equal(t, "Blade Runner", m.form.value("Title"))
}

func TestEditKeyOpensForm(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, press(40, 12), release(40, 12))
	assert.Equal(t, ModeBoard, m.mode, "a single click does not edit")

	m = send(m, hover(40, 12), keys("e"))
	require.Equal(t, ModeNodeForm, m.mode)
	assert.Equal(t, "dune", m.editingID)
	assert.Equal(t, "Dune", m.form.value("Title"))

	m = send(m, special(tea.KeyTab), special(tea.KeyTab), special(tea.KeyTab), keys("epic"), special(tea.KeyEnter))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Equal(t, []string{"epic"}, m.editor.Document().Find("dune").Genres)
}

func TestDoubleClickOpensDetails(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, press(40, 12), release(40, 12), press(40, 12), release(40, 12))
	require.Equal(t, ModeDetails, m.mode)
	assert.Equal(t, "dune", m.detailsID)
	assert.Equal(t, geom.Pt(0, 0), pos(t, m.editor.Document(), "dune"))
}

func TestConnectFlow(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), pairDoc())

	m = send(m, hover(10, 12), keys("c"))
	assert.Equal(t, "a", m.editor.PendingSource())

	m = send(m, press(70, 12), release(70, 12))
	require.Equal(t, ModeReason, m.mode)

	m = send(m, keys("same director"), special(tea.KeyEnter))
	assert.Equal(t, ModeBoard, m.mode)
	links := m.editor.Document().Links
	require.Len(t, links, 1)
	assert.Equal(t, "a", links[0].Source.NodeID())
	assert.Equal(t, "b", links[0].Target.NodeID())
	assert.Equal(t, "same director", links[0].Reason)
	assert.Empty(t, m.editor.PendingSource())
}

func TestEscapeCancelsReason(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), pairDoc())
	m = send(m, hover(10, 12), keys("c"), press(70, 12), release(70, 12), special(tea.KeyEsc))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Empty(t, m.editor.Document().Links)
	assert.Empty(t, m.editor.PendingSource())
}

func TestClickOnStringRemovesIt(t *testing.T) {
	doc := pairDoc()
	doc.Links = []board.Link{{Source: board.Ref("a"), Target: board.Ref("b"), Reason: "Ridley Scott"}}
	m, _ := editorWith(t, testConfig(t), doc)

	m = send(m, hover(40, 11))
	assert.Contains(t, m.View(), "Ridley Scott")

	m = send(m, press(40, 11), release(40, 11))
	assert.Empty(t, m.editor.Document().Links)

	send(m, keys("u"))
	assert.Len(t, m.editor.Document().Links, 1)
}

func TestKeyboardMove(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	doc := m.editor.Document()

	m = send(m, hover(40, 12), keys("m"))
	require.Equal(t, ModeMove, m.mode)
	m = send(m, keys("l"), keys("j"), special(tea.KeyEnter))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Equal(t, geom.Pt(40, 40), pos(t, doc, "dune"))

	m = send(m, keys("u"))
	assert.Equal(t, geom.Pt(0, 0), pos(t, doc, "dune"))

	m = send(m, hover(40, 12), keys("m"), keys("L"), special(tea.KeyEsc))
	assert.Equal(t, geom.Pt(0, 0), pos(t, doc, "dune"))
	assert.Equal(t, ModeBoard, m.mode)
}

func TestDetailsViewAndEdit(t *testing.T) {
	doc := pairDoc()
	doc.Links = []board.Link{{Source: board.Ref("a"), Target: board.Ref("b"), Reason: "Ridley Scott"}}
	doc.Nodes[0].Review = "Still **terrifying**."
	m, _ := editorWith(t, testConfig(t), doc)

	m = send(m, hover(10, 12), keys("d"))
	require.Equal(t, ModeDetails, m.mode)
	view := m.View()
	assert.Contains(t, view, "Alien")
	assert.Contains(t, view, "Blade Runner")
	assert.Contains(t, view, "Ridley Scott")

	m = send(m, keys("e"))
	require.Equal(t, ModeDetailsForm, m.mode)
	for i := 0; i < 4; i++ {
		m = send(m, special(tea.KeyTab))
	}
	m = send(m, keys("9.1"), special(tea.KeyCtrlS))
	assert.Equal(t, ModeDetails, m.mode)
	rating := m.editor.Document().Find("a").Rating
	require.NotNil(t, rating)
	assert.Equal(t, 9.1, *rating)
	assert.Equal(t, "Still **terrifying**.", m.editor.Document().Find("a").Review)

	m = send(m, special(tea.KeyEsc))
	assert.Equal(t, ModeBoard, m.mode)
}

func TestDetailsMarkdown(t *testing.T) {
	doc := pairDoc()
	doc.Links = []board.Link{{Source: board.Ref("b"), Target: board.Ref("a")}}
	doc.Nodes[0].Rating = board.Float(8.5)

	md := detailsMarkdown(doc, doc.Nodes[0])
	assert.Contains(t, md, "# Alien")
	assert.Contains(t, md, "**MOVIE • 2001** · ★ 8.5")
	assert.Contains(t, md, "- **Blade Runner** (MOVIE): Connected")
	assert.Contains(t, md, "_No review yet._")
}

func TestSaveAndPublishKeys(t *testing.T) {
	m, store := editorWith(t, testConfig(t), singleDoc())
	m = send(m, keys("n"), keys("Heat"), special(tea.KeyCtrlS), keys("s"))
	assert.Equal(t, "Saved", m.successMessage)

	saved, found, err := app.LoadDocument(store, app.EditorDataKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotNil(t, saved.Find("heat"))

	m = send(m, keys("p"))
	assert.Equal(t, "Published", m.successMessage)
	published, found, err := app.LoadDocument(store, app.PublicDataKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, published.Nodes, 2)
}

func TestResetDemoAsksFirst(t *testing.T) {
	cfg := testConfig(t)
	cfg.Confirmations = true
	m, _ := editorWith(t, cfg, singleDoc())

	m = send(m, keys("r"))
	require.Equal(t, ModeConfirm, m.mode)
	m = send(m, keys("n"))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Len(t, m.editor.Document().Nodes, 1)

	m = send(m, keys("r"), keys("y"))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Len(t, m.editor.Document().Nodes, len(board.Demo().Nodes))
}

func TestQuit(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	_, cmd := m.Update(keys("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestExportFiles(t *testing.T) {
	cfg := testConfig(t)
	m, _ := editorWith(t, cfg, pairDoc())

	m = send(m, keys("x"), keys("board"), special(tea.KeyEnter))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Contains(t, m.successMessage, "Exported to")
	assert.FileExists(t, filepath.Join(cfg.SaveDirectory, "board.txt"))

	m = send(m, keys("X"), keys("board.png"), special(tea.KeyEnter))
	assert.Equal(t, ModeBoard, m.mode)
	info, err := os.Stat(filepath.Join(cfg.SaveDirectory, "board.png"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExportAsksBeforeOverwrite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Confirmations = true
	m, _ := editorWith(t, cfg, pairDoc())
	path := filepath.Join(cfg.SaveDirectory, "board.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	m = send(m, keys("x"), keys("board"), special(tea.KeyEnter))
	require.Equal(t, ModeConfirm, m.mode)
	m = send(m, keys("n"))
	assert.Equal(t, ModeFileInput, m.mode)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	m = send(m, special(tea.KeyEnter), keys("y"))
	assert.Equal(t, ModeBoard, m.mode)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alien")
}

func TestEmptyFilenameIsRejected(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, keys("x"), special(tea.KeyEnter))
	assert.Equal(t, ModeFileInput, m.mode)
	assert.Equal(t, "Please enter a filename", m.errorMessage)
}

func TestExportReportsUnusableDirectory(t *testing.T) {
	cfg := testConfig(t)
	file := filepath.Join(cfg.SaveDirectory, "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.SaveDirectory = filepath.Join(file, "exports")

	m, _ := editorWith(t, cfg, singleDoc())
	m = send(m, keys("x"), keys("board"), special(tea.KeyEnter))
	assert.Equal(t, ModeFileInput, m.mode)
	assert.Contains(t, m.errorMessage, "creating save directory")
}

func TestHelpScrollsAndCloses(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), singleDoc())
	m = send(m, keys("?"))
	require.True(t, m.help)
	assert.Contains(t, m.View(), "redstring help")

	m = send(m, keys("j"))
	assert.Equal(t, 1, m.helpScroll)
	m = send(m, special(tea.KeyEsc))
	assert.False(t, m.help)
}

func TestStatusLine(t *testing.T) {
	m, _ := editorWith(t, testConfig(t), pairDoc())
	assert.Contains(t, m.statusLine(), "EDITOR | zoom 1.00× | 2 notes · 0 strings")

	m = send(m, hover(10, 12), keys("c"))
	assert.Contains(t, m.statusLine(), "connecting from Alien")
}

func TestSubmissionsList(t *testing.T) {
	m, store := editorWith(t, testConfig(t), singleDoc())
	s, err := board.NewSubmission("Heat", board.KindMovie, "heist classic", "", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, app.AppendSubmission(store, s))

	m = send(m, keys("S"))
	require.Equal(t, ModeSubmissions, m.mode)
	assert.Contains(t, m.View(), "2026-03-01 09:30  MOVIE  Heat: heist classic")
}

func publicWith(t *testing.T, doc *board.Document) (model, kv.Store) {
	t.Helper()
	store := kv.NewMemory()
	require.NoError(t, app.SaveDocument(store, app.PublicDataKey, doc))
	m := newPublicModel(store, testConfig(t), zap.NewNop())
	return send(m, tea.WindowSizeMsg{Width: 80, Height: 25}), store
}

func TestPublicIsReadOnly(t *testing.T) {
	doc := pairDoc()
	doc.Links = []board.Link{{Source: board.Ref("a"), Target: board.Ref("b")}}
	m, _ := publicWith(t, doc)

	m = send(m, press(10, 12), motion(14, 12), release(14, 12))
	assert.Equal(t, geom.Pt(-600, 0), pos(t, m.public.Document(), "a"))

	m = send(m, press(40, 11), release(40, 11))
	assert.Len(t, m.public.Document().Links, 1)
	assert.Equal(t, ModeBoard, m.mode)

	m = send(m, keys("n"), keys("e"))
	assert.Equal(t, ModeBoard, m.mode)
	assert.NotContains(t, m.View(), "[Edit]")
}

func TestPublicSuggestion(t *testing.T) {
	m, store := publicWith(t, singleDoc())

	m = send(m, keys("s"))
	require.Equal(t, ModeSuggest, m.mode)
	m = send(m, keys("Heat"), special(tea.KeyEnter), special(tea.KeyEnter), special(tea.KeyEnter), special(tea.KeyEnter))
	assert.Equal(t, ModeSuggest, m.mode)
	assert.Equal(t, "description is required", m.form.err)

	m = send(m, special(tea.KeyShiftTab), keys("heist classic"), special(tea.KeyTab), special(tea.KeyEnter))
	assert.Equal(t, ModeBoard, m.mode)
	assert.Equal(t, "Thanks! Suggestion sent.", m.successMessage)

	subs, err := app.LoadSubmissions(store)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Heat", subs[0].Title)
	assert.Equal(t, "heist classic", subs[0].Description)
}

func TestPublicReload(t *testing.T) {
	m, store := publicWith(t, singleDoc())
	require.NoError(t, app.SaveDocument(store, app.PublicDataKey, pairDoc()))

	m = send(m, keys("r"))
	assert.Equal(t, "Reloaded", m.successMessage)
	assert.Len(t, m.public.Document().Nodes, 2)
}

func TestPublicDoubleClickOpensDetails(t *testing.T) {
	m, _ := publicWith(t, singleDoc())
	m = send(m, press(40, 12), release(40, 12), press(40, 12), release(40, 12))
	assert.Equal(t, ModeDetails, m.mode)
	assert.Equal(t, "dune", m.detailsID)
}
