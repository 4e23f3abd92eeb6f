// Package tui is the terminal front end: a bubbletea program that feeds
// mouse and key input into a board scene and draws it with lipgloss.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"redstring/internal/app"
	"redstring/internal/board"
	"redstring/internal/config"
	"redstring/internal/geom"
	"redstring/internal/kv"
	"redstring/internal/render"
	"redstring/internal/scene"
)

type Mode int

const (
	ModeBoard Mode = iota
	ModeNodeForm
	ModeReason
	ModeDetails
	ModeDetailsForm
	ModeSuggest
	ModeSubmissions
	ModeMove
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpExportTXT FileOperation = iota
	FileOpExportPNG
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmResetDemo
	ConfirmOverwriteFile
)

// host is what both boards offer the terminal.
type host interface {
	Document() *board.Document
	Scene() *scene.Scene
	TakePrompt() app.Prompt
}

type model struct {
	width  int
	height int

	cfg    *config.Config
	logger *zap.Logger
	vp     *render.Viewport

	// Exactly one of editor and public is set.
	editor *app.Editor
	public *app.Public

	mode       Mode
	help       bool
	helpScroll int

	form      form
	editingID string

	moveID   string
	moveFrom *geom.Point

	detailsID     string
	detailsScroll int
	renderer      *glamour.TermRenderer
	rendererWidth int

	fileOp        FileOperation
	fileInput     textinput.Model
	filename      string
	confirmAction ConfirmAction

	submissions []board.Submission

	errorMessage   string
	successMessage string
}

func newModel(cfg *config.Config, logger *zap.Logger) model {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return model{
		width:  80,
		height: 24,
		cfg:    cfg,
		logger: logger,
		vp: &render.Viewport{
			Cols:  80,
			Rows:  23,
			CellW: cfg.Surface.CellWidth,
			CellH: cfg.Surface.CellHeight,
		},
	}
}

func appOptions(cfg *config.Config, cameraKey string) app.Options {
	return app.Options{CameraKey: cameraKey, HitWidth: cfg.Surface.HitWidth}
}

func newEditorModel(store kv.Store, cfg *config.Config, logger *zap.Logger) model {
	m := newModel(cfg, logger)
	m.editor = app.NewEditor(store, m.vp, appOptions(m.cfg, m.cfg.Camera.EditorKey), m.logger)
	return m
}

func newPublicModel(store kv.Store, cfg *config.Config, logger *zap.Logger) model {
	m := newModel(cfg, logger)
	m.public = app.NewPublic(store, m.vp, appOptions(m.cfg, m.cfg.Camera.PublicKey), m.logger)
	return m
}

// RunEditor runs the editable board until the user quits.
func RunEditor(store kv.Store, cfg *config.Config, logger *zap.Logger) error {
	return run(newEditorModel(store, cfg, logger))
}

// RunPublic runs the read-only board with its suggestion form.
func RunPublic(store kv.Store, cfg *config.Config, logger *zap.Logger) error {
	return run(newPublicModel(store, cfg, logger))
}

func run(m model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	return err
}

func (m *model) host() host {
	if m.editor != nil {
		return m.editor
	}
	return m.public
}

func (m *model) scene() *scene.Scene {
	return m.host().Scene()
}

// resize gives the board every row but the status line.
func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.vp.Cols = max(width, 1)
	m.vp.Rows = max(height-1, 1)
	if m.renderer != nil {
		m.ensureRenderer()
	}
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m *model) fail(err error) {
	m.successMessage = ""
	m.errorMessage = err.Error()
}

func (m *model) succeed(msg string) {
	m.errorMessage = ""
	m.successMessage = msg
}
