package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"redstring/internal/board"
)

// field is one row of a form: a text input, or a kind selector when kind
// is set.
type field struct {
	label string
	input textinput.Model
	kind  *board.Kind
}

// form is a vertical list of fields with one focused at a time.
type form struct {
	title  string
	fields []field
	focus  int
	err    string
}

func newInput(value, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 500
	ti.Width = 48
	ti.SetValue(value)
	return ti
}

func (f *form) addText(label, value, placeholder string) {
	f.fields = append(f.fields, field{label: label, input: newInput(value, placeholder)})
}

func (f *form) addKind(label string, k board.Kind) {
	if k == "" {
		k = board.KindMovie
	}
	f.fields = append(f.fields, field{label: label, kind: &k})
}

// start focuses the first field.
func (f *form) start() tea.Cmd {
	f.focus = 0
	return f.refocus()
}

func (f *form) refocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.fields {
		if f.fields[i].kind != nil {
			continue
		}
		if i == f.focus {
			cmd = f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
	return cmd
}

func (f *form) move(delta int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.refocus()
}

func (f *form) value(label string) string {
	for _, fl := range f.fields {
		if fl.label == label && fl.kind == nil {
			return fl.input.Value()
		}
	}
	return ""
}

func (f *form) kind(label string) board.Kind {
	for _, fl := range f.fields {
		if fl.label == label && fl.kind != nil {
			return *fl.kind
		}
	}
	return ""
}

// paste inserts text at the cursor of the focused input.
func (f *form) paste(text string) {
	if text == "" || f.focus >= len(f.fields) || f.fields[f.focus].kind != nil {
		return
	}
	in := &f.fields[f.focus].input
	value := []rune(in.Value())
	pos := in.Position()
	if pos > len(value) {
		pos = len(value)
	}
	in.SetValue(string(value[:pos]) + text + string(value[pos:]))
	in.SetCursor(pos + len([]rune(text)))
}

// update routes a key to the form. It reports submit on enter in the last
// field or ctrl+s anywhere.
func (f *form) update(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	switch msg.String() {
	case "tab", "down":
		return f.move(1), false
	case "shift+tab", "up":
		return f.move(-1), false
	case "ctrl+s":
		return nil, true
	case "enter":
		if f.focus == len(f.fields)-1 {
			return nil, true
		}
		return f.move(1), false
	}
	if f.focus >= len(f.fields) {
		return nil, false
	}
	fl := &f.fields[f.focus]
	if fl.kind != nil {
		switch msg.String() {
		case "right", "l", " ":
			*fl.kind = fl.kind.Next()
		case "left", "h":
			for i := 0; i < len(board.Kinds)-1; i++ {
				*fl.kind = fl.kind.Next()
			}
		}
		return nil, false
	}
	fl.input, cmd = fl.input.Update(msg)
	return cmd, false
}

var (
	formBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#a33a30")).Padding(0, 1)
	formTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	formLabel   = lipgloss.NewStyle().Width(11).Foreground(lipgloss.Color("#9ca3af"))
	formFocused = lipgloss.NewStyle().Width(11).Foreground(lipgloss.Color("#f8fafc")).Bold(true)
	formError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	formHint    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

func (f *form) view(hint string) string {
	var b strings.Builder
	b.WriteString(formTitle.Render(f.title))
	b.WriteString("\n\n")
	for i, fl := range f.fields {
		label := formLabel
		if i == f.focus {
			label = formFocused
		}
		b.WriteString(label.Render(fl.label))
		if fl.kind != nil {
			b.WriteString("‹ " + fl.kind.Label() + " ›")
		} else {
			b.WriteString(fl.input.View())
		}
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n" + formError.Render(f.err) + "\n")
	}
	b.WriteString("\n" + formHint.Render(hint))
	return formBox.Render(b.String())
}
