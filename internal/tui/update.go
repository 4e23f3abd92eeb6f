package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"redstring/internal/app"
	"redstring/internal/board"
	"redstring/internal/render"
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.BlurMsg:
		m.scene().PointerCancel()
		return m, nil

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.help {
			m.handleHelpKey(msg.String())
			return m, nil
		}
		switch m.mode {
		case ModeBoard:
			return m.updateBoard(msg)
		case ModeMove:
			return m.updateMove(msg)
		case ModeNodeForm, ModeReason, ModeDetailsForm, ModeSuggest:
			return m.updateForm(msg)
		case ModeDetails:
			return m.updateDetails(msg)
		case ModeSubmissions:
			if msg.String() == "esc" || msg.String() == "q" {
				m.mode = ModeBoard
			}
			return m, nil
		case ModeFileInput:
			return m.updateFileInput(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		}
	}

	// Cursor blink and the like go to whichever input has focus.
	var cmd tea.Cmd
	switch m.mode {
	case ModeNodeForm, ModeReason, ModeDetailsForm, ModeSuggest:
		if m.form.focus < len(m.form.fields) && m.form.fields[m.form.focus].kind == nil {
			f := &m.form.fields[m.form.focus]
			f.input, cmd = f.input.Update(msg)
		}
	case ModeFileInput:
		m.fileInput, cmd = m.fileInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	sc := m.scene()

	switch key {
	case "ctrl+c", "q":
		if !m.cfg.Confirmations {
			return m, tea.Quit
		}
		m.mode = ModeConfirm
		m.confirmAction = ConfirmQuit
		return m, nil
	case "?":
		m.help = true
		m.helpScroll = 0
		return m, nil
	case "+", "=":
		sc.ZoomIn()
		return m, nil
	case "-", "_":
		sc.ZoomOut()
		return m, nil
	case "0":
		sc.ResetView()
		return m, nil
	case "d":
		if id := sc.Hovered(); id != "" {
			m.openDetails(id)
		}
		return m, nil
	}
	if isDirection(key) {
		m.handlePan(key)
		return m, nil
	}

	if m.public != nil {
		return m.updatePublicBoard(key)
	}
	return m.updateEditorBoard(key)
}

func (m model) updateEditorBoard(key string) (tea.Model, tea.Cmd) {
	ed := m.editor
	sc := m.scene()

	switch key {
	case "esc":
		ed.CancelConnect()
		m.clearMessages()
	case "n":
		cmd := m.openNodeForm("")
		return m, cmd
	case "e":
		if id := sc.Hovered(); id != "" {
			cmd := m.openNodeForm(id)
			return m, cmd
		}
	case "c":
		if id := sc.Hovered(); id != "" {
			ed.StartConnect(id)
		}
	case "D":
		if id := sc.Hovered(); id != "" && ed.DeleteNode(id) {
			m.succeed(fmt.Sprintf("Deleted %s (u to undo)", id))
		}
	case "m":
		if m.startMove() {
			m.clearMessages()
		}
	case "u":
		if ed.Undo() {
			m.succeed("Undone")
		} else {
			m.succeed("Nothing to undo")
		}
	case "U", "ctrl+y":
		if ed.Redo() {
			m.succeed("Redone")
		} else {
			m.succeed("Nothing to redo")
		}
	case "s":
		if err := ed.Save(); err != nil {
			m.fail(err)
		} else {
			m.succeed("Saved")
		}
	case "p":
		if err := ed.Publish(); err != nil {
			m.fail(err)
		} else {
			m.succeed("Published")
		}
	case "a":
		m.succeed(fmt.Sprintf("Auto-connect added %d strings", ed.AutoConnect()))
	case "r":
		if !m.cfg.Confirmations {
			ed.ResetDemo()
			m.succeed("Demo board restored")
			return m, nil
		}
		m.mode = ModeConfirm
		m.confirmAction = ConfirmResetDemo
	case "x":
		cmd := m.openFileInput(FileOpExportTXT)
		return m, cmd
	case "X":
		cmd := m.openFileInput(FileOpExportPNG)
		return m, cmd
	case "S":
		subs, err := ed.Submissions()
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.submissions = subs
		m.mode = ModeSubmissions
	}
	cmd := m.takePrompt()
	return m, cmd
}

func (m model) updatePublicBoard(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "r":
		if err := m.public.Reload(); err != nil {
			m.fail(err)
		} else {
			m.succeed("Reloaded")
		}
	case "s":
		cmd := m.openSuggestForm()
		return m, cmd
	case "esc":
		m.clearMessages()
	}
	return m, nil
}

func (m model) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case key == "enter":
		m.finishMove(true)
	case key == "esc":
		m.finishMove(false)
	case isDirection(key):
		m.handleNodeMove(key)
	}
	return m, nil
}

// takePrompt opens whatever the last scene event asked for.
func (m *model) takePrompt() tea.Cmd {
	p := m.host().TakePrompt()
	switch p.Intent {
	case app.IntentEdit:
		return m.openNodeForm(p.ID)
	case app.IntentDetails:
		m.openDetails(p.ID)
	case app.IntentReason:
		return m.openReasonForm()
	}
	return nil
}

func (m *model) openNodeForm(id string) tea.Cmd {
	if m.editor == nil {
		return nil
	}
	d := board.Draft{Kind: board.KindMovie}
	m.form = form{title: "Add a note"}
	if id != "" {
		n := m.editor.Document().Find(id)
		if n == nil {
			return nil
		}
		d = board.DraftOf(n)
		m.form.title = "Edit " + n.Title
	}
	m.editingID = id
	m.form.addText("Title", d.Title, "Inception")
	m.form.addKind("Kind", d.Kind)
	m.form.addText("Year", d.Year, fmt.Sprint(time.Now().Year()))
	m.form.addText("Genres", d.Genres, "sci-fi, thriller")
	m.mode = ModeNodeForm
	return m.form.start()
}

func (m *model) openDetailsForm(id string) tea.Cmd {
	n := m.editor.Document().Find(id)
	if n == nil {
		return nil
	}
	d := board.DraftOf(n)
	m.editingID = id
	m.form = form{title: "Edit details of " + n.Title}
	m.form.addText("Title", d.Title, "")
	m.form.addKind("Kind", d.Kind)
	m.form.addText("Year", d.Year, "")
	m.form.addText("Genres", d.Genres, "")
	m.form.addText("Rating", d.Rating, "8.5")
	m.form.addText("Director", d.Director, "")
	m.form.addText("Streaming", d.Streaming, "")
	m.form.addText("Poster", d.Poster, "https://…")
	m.form.addText("Review", d.Review, "markdown welcome")
	m.mode = ModeDetailsForm
	return m.form.start()
}

func (m *model) openReasonForm() tea.Cmd {
	ed := m.editor
	src, dst := ed.Document().Find(ed.PendingSource()), ed.Document().Find(ed.PendingTarget())
	if src == nil || dst == nil {
		return nil
	}
	m.form = form{title: fmt.Sprintf("Connect %s → %s", src.Title, dst.Title)}
	m.form.addText("Reason", "", "Connected")
	m.mode = ModeReason
	return m.form.start()
}

func (m *model) openSuggestForm() tea.Cmd {
	m.form = form{title: "Suggest something for the board"}
	m.form.addText("Title", "", "")
	m.form.addKind("Kind", board.KindMovie)
	m.form.addText("Why", "", "what makes it fit")
	m.form.addText("Email", "", "optional")
	m.mode = ModeSuggest
	return m.form.start()
}

func (m *model) openDetails(id string) {
	if m.host().Document().Find(id) == nil {
		return
	}
	m.detailsID = id
	m.detailsScroll = 0
	m.mode = ModeDetails
	m.ensureRenderer()
}

func (m *model) openFileInput(op FileOperation) tea.Cmd {
	m.fileOp = op
	m.fileInput = textinput.New()
	m.fileInput.Prompt = ""
	m.fileInput.Placeholder = "board"
	m.fileInput.CharLimit = 255
	m.errorMessage = ""
	m.mode = ModeFileInput
	return m.fileInput.Focus()
}

func (m model) formDraft() board.Draft {
	return board.Draft{
		Title:     m.form.value("Title"),
		Kind:      m.form.kind("Kind"),
		Year:      m.form.value("Year"),
		Genres:    m.form.value("Genres"),
		Rating:    m.form.value("Rating"),
		Poster:    m.form.value("Poster"),
		Review:    m.form.value("Review"),
		Director:  m.form.value("Director"),
		Streaming: m.form.value("Streaming"),
	}
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == ModeReason {
			m.editor.CancelConnect()
		}
		if m.mode == ModeDetailsForm {
			m.mode = ModeDetails
			return m, nil
		}
		m.mode = ModeBoard
		return m, nil
	case "ctrl+v":
		text, err := readClipboard()
		if err != nil {
			m.logger.Debug("clipboard read failed", zap.Error(err))
			m.form.err = "clipboard unavailable"
			return m, nil
		}
		m.form.paste(pasteText(text))
		return m, nil
	}

	cmd, submit := m.form.update(msg)
	if !submit {
		return m, cmd
	}
	m.submitForm()
	return m, nil
}

func (m *model) submitForm() {
	switch m.mode {
	case ModeNodeForm:
		id, err := m.editor.SaveNode(m.formDraft(), m.editingID)
		if err != nil {
			m.form.err = err.Error()
			return
		}
		m.mode = ModeBoard
		m.succeed("Saved " + id)
	case ModeDetailsForm:
		if err := m.editor.SaveDetails(m.editingID, m.formDraft()); err != nil {
			m.form.err = err.Error()
			return
		}
		m.mode = ModeDetails
		m.succeed("Details saved")
	case ModeReason:
		if m.editor.FinishConnect(strings.TrimSpace(m.form.value("Reason"))) {
			m.succeed("Connected")
		}
		m.mode = ModeBoard
	case ModeSuggest:
		_, err := m.public.Suggest(m.form.value("Title"), m.form.kind("Kind"), m.form.value("Why"), m.form.value("Email"))
		if err != nil {
			m.form.err = err.Error()
			return
		}
		m.mode = ModeBoard
		m.succeed("Thanks! Suggestion sent.")
	}
}

func (m model) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = ModeBoard
	case "j", "down":
		m.detailsScroll++
	case "k", "up":
		if m.detailsScroll > 0 {
			m.detailsScroll--
		}
	case "e":
		if m.editor != nil {
			cmd := m.openDetailsForm(m.detailsID)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) updateFileInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeBoard
		m.errorMessage = ""
		return m, nil
	case tea.KeyEnter:
		filename := strings.TrimSpace(m.fileInput.Value())
		if filename == "" {
			m.errorMessage = "Please enter a filename"
			return m, nil
		}
		ext := ".txt"
		if m.fileOp == FileOpExportPNG {
			ext = ".png"
		}
		if !strings.HasSuffix(strings.ToLower(filename), ext) {
			filename += ext
		}
		path, err := m.cfg.SavePath(filename)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		if _, err := os.Stat(path); err == nil && m.cfg.Confirmations {
			m.filename = path
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteFile
			return m, nil
		}
		m.export(path)
		return m, nil
	}
	var cmd tea.Cmd
	m.fileInput, cmd = m.fileInput.Update(msg)
	return m, cmd
}

func (m *model) export(path string) {
	var err error
	switch m.fileOp {
	case FileOpExportTXT:
		err = render.ExportTXT(m.scene(), path)
	case FileOpExportPNG:
		err = render.ExportPNG(m.host().Document(), path, render.DefaultPNGOptions())
	}
	if err != nil {
		m.mode = ModeFileInput
		m.fail(fmt.Errorf("export failed: %w", err))
		return
	}
	m.mode = ModeBoard
	absPath, _ := filepath.Abs(path)
	m.succeed("Exported to " + absPath)
	m.logger.Info("board exported", zap.String("path", absPath))
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeBoard
		switch m.confirmAction {
		case ConfirmQuit:
			return m, tea.Quit
		case ConfirmResetDemo:
			m.editor.ResetDemo()
			m.succeed("Demo board restored (u to undo)")
		case ConfirmOverwriteFile:
			m.export(m.filename)
		}
	case "n", "N", "esc":
		if m.confirmAction == ConfirmOverwriteFile {
			m.mode = ModeFileInput
		} else {
			m.mode = ModeBoard
		}
	}
	return m, nil
}
