package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"redstring/internal/board"
	"redstring/internal/render"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e5e7eb")).Background(lipgloss.Color("#3f2a1d"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fecaca")).Background(lipgloss.Color("#7f1d1d")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#bbf7d0")).Background(lipgloss.Color("#14532d"))
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	var body string
	switch m.mode {
	case ModeNodeForm, ModeDetailsForm:
		body = m.panel(m.form.view("Tab next field · Ctrl+V paste · Enter save · Esc cancel"))
	case ModeReason:
		body = m.panel(m.form.view("Enter connect · Esc cancel"))
	case ModeSuggest:
		body = m.panel(m.form.view("Tab next field · Enter send · Esc cancel"))
	case ModeDetails:
		body = m.detailsView()
	case ModeSubmissions:
		body = m.submissionsView()
	default:
		body = strings.Join(render.Draw(m.scene()).Styled(), "\n")
	}
	return body + "\n" + m.statusLine()
}

// panel centers content in the board area.
func (m model) panel(content string) string {
	return lipgloss.Place(m.width, max(m.height-1, 1), lipgloss.Center, lipgloss.Center, content)
}

// fit cuts lines to the board area, starting at scroll.
func (m model) fit(lines []string, scroll int) string {
	height := max(m.height-1, 1)
	scroll = max(min(scroll, len(lines)-height), 0)
	end := min(scroll+height, len(lines))
	out := lines[scroll:end]
	for len(out) < height {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func (m model) statusLine() string {
	width := max(m.width, 1)
	line := bar(statusStyle, width)

	switch m.mode {
	case ModeFileInput:
		op := "Export text"
		if m.fileOp == FileOpExportPNG {
			op = "Export PNG"
		}
		status := fmt.Sprintf("%s | filename: %s | Enter=confirm, Esc=cancel", op, m.fileInput.View())
		if m.errorMessage != "" {
			return bar(errorStyle, width).Render(fmt.Sprintf("%s | ERROR: %s | filename: %s", op, m.errorMessage, m.fileInput.View()))
		}
		return line.Render(status)
	case ModeConfirm:
		var message string
		switch m.confirmAction {
		case ConfirmQuit:
			message = "Quit redstring? Unsaved changes are lost. (y/n)"
		case ConfirmResetDemo:
			message = "Replace the board with the demo board? (y/n)"
		case ConfirmOverwriteFile:
			message = fmt.Sprintf("%s exists. Overwrite? (y/n)", m.filename)
		}
		return bar(errorStyle, width).Render(message)
	case ModeMove:
		title := m.moveID
		if n := m.editor.Document().Find(m.moveID); n != nil {
			title = n.Title
		}
		return line.Render(fmt.Sprintf("MOVE | %s | hjkl/arrows=move, Enter=finish, Esc=cancel", title))
	case ModeDetails:
		hint := "j/k scroll | Esc back"
		if m.editor != nil {
			hint = "j/k scroll | e edit | Esc back"
		}
		return m.withMessages(line, "DETAILS | "+hint)
	case ModeSubmissions:
		return line.Render(fmt.Sprintf("SUGGESTIONS | %d received | Esc back", len(m.submissions)))
	case ModeNodeForm, ModeReason, ModeDetailsForm, ModeSuggest:
		return line.Render("FORM")
	}

	sc := m.scene()
	doc := m.host().Document()
	label := "EDITOR"
	if m.public != nil {
		label = "PUBLIC"
	}
	status := fmt.Sprintf("%s | zoom %.2f× | %d notes · %d strings", label, sc.Camera().State().K, len(doc.Nodes), len(doc.Links))
	if m.editor != nil && m.editor.PendingSource() != "" {
		src := m.editor.PendingSource()
		if n := doc.Find(src); n != nil {
			src = n.Title
		}
		status += fmt.Sprintf(" | connecting from %s: click a target, Esc to cancel", src)
	}
	return m.withMessages(line, status)
}

// bar keeps a status line on one row, cut at width.
func bar(style lipgloss.Style, width int) lipgloss.Style {
	return style.Inline(true).Width(width).MaxWidth(width)
}

func (m model) withMessages(style lipgloss.Style, status string) string {
	width := max(m.width, 1)
	switch {
	case m.errorMessage != "":
		return bar(errorStyle, width).Render(status + " | ERROR: " + m.errorMessage)
	case m.successMessage != "":
		return bar(successStyle, width).Render(status + " | " + m.successMessage)
	}
	hint := " | ? for help | q to quit"
	if m.public != nil {
		hint = " | s suggest | ? for help | q to quit"
	}
	return style.Render(status + hint)
}

// detailsMarkdown is the item page of a note.
func detailsMarkdown(doc *board.Document, n *board.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	fmt.Fprintf(&b, "**%s • %d**", n.Kind.Label(), n.Year)
	if n.Rating != nil {
		fmt.Fprintf(&b, " · ★ %.1f", *n.Rating)
	}
	b.WriteString("\n\n")
	if len(n.Genres) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n\n", strings.Join(n.Genres, ", "))
	}
	if n.Director != "" {
		fmt.Fprintf(&b, "Director: %s\n\n", n.Director)
	}
	if n.Streaming != "" {
		fmt.Fprintf(&b, "Streaming on: %s\n\n", n.Streaming)
	}
	fmt.Fprintf(&b, "Poster: %s\n\n", board.PosterOf(n))

	b.WriteString("## Connected to\n\n")
	neighbors := doc.Neighbors(n.ID)
	if len(neighbors) == 0 {
		b.WriteString("_Nothing yet._\n\n")
	}
	for _, nb := range neighbors {
		reason := nb.Reason
		if reason == "" {
			reason = "Connected"
		}
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", nb.Node.Title, nb.Node.Kind.Label(), reason)
	}

	b.WriteString("\n## Review\n\n")
	if strings.TrimSpace(n.Review) == "" {
		b.WriteString("_No review yet._\n")
	} else {
		b.WriteString(n.Review + "\n")
	}
	return b.String()
}

func (m model) detailsView() string {
	doc := m.host().Document()
	n := doc.Find(m.detailsID)
	if n == nil {
		return m.fit([]string{"This note is gone."}, 0)
	}
	md := detailsMarkdown(doc, n)
	out := md
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			out = rendered
		}
	}
	return m.fit(strings.Split(strings.TrimRight(out, "\n"), "\n"), m.detailsScroll)
}

// ensureRenderer keeps a markdown renderer wrapped to the current width.
func (m *model) ensureRenderer() {
	width := max(m.width-4, 20)
	if m.renderer != nil && m.rendererWidth == width {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.logger.Debug("markdown renderer unavailable", zap.Error(err))
		return
	}
	m.renderer, m.rendererWidth = r, width
}

func (m model) submissionsView() string {
	if len(m.submissions) == 0 {
		return m.fit([]string{"No suggestions yet."}, 0)
	}
	var lines []string
	for i := len(m.submissions) - 1; i >= 0; i-- {
		s := m.submissions[i]
		line := fmt.Sprintf("%s  %-5s  %s: %s", s.CreatedAt.Format("2006-01-02 15:04"), s.Kind.Label(), s.Title, s.Description)
		if s.Email != "" {
			line += " <" + s.Email + ">"
		}
		lines = append(lines, line)
	}
	return m.fit(lines, 0)
}
