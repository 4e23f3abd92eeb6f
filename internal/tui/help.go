package tui

import (
	"fmt"
	"strings"
)

var commonHelp = []string{
	"Mouse:",
	"------",
	"  Drag a note        Move it",
	"  Drag the board     Pan",
	"  Wheel              Zoom (Ctrl+wheel for fine steps)",
	"  Hover a string     Show its reason",
	"  Double click       Open the details of a note",
	"  Click the preview  Open the details of a note",
	"",
	"View:",
	"-----",
	"  h/←/j/↓/k/↑/l/→    Pan the board",
	"  Shift+h/j/k/l      Pan 2x faster",
	"  + / -              Zoom in / out around the center",
	"  0                  Reset the view",
	"  d                  Details of the note under the pointer",
	"",
}

var editorHelp = []string{
	"Notes:",
	"------",
	"  n                  Add a note",
	"  e / [Edit]         Edit the note under the pointer",
	"  m                  Move the note under the pointer with the keys",
	"  D / [Delete]       Delete the note under the pointer",
	"",
	"Strings:",
	"--------",
	"  c / [Connect]      Pick the note under the pointer as source",
	"                     then click the target and type a reason",
	"  click a string     Remove it",
	"  a                  Auto-connect notes sharing a genre",
	"  Esc                Cancel connecting",
	"",
	"Board:",
	"------",
	"  u                  Undo",
	"  U / Ctrl+Y         Redo",
	"  s                  Save",
	"  p                  Publish to the public board",
	"  r                  Reset to the demo board",
	"  x                  Export the view as text",
	"  X                  Export the whole board as PNG",
	"  S                  Show visitor suggestions",
	"",
	"Forms:",
	"------",
	"  Tab / Shift+Tab    Next / previous field",
	"  ←/→ on Kind        Change the kind",
	"  Ctrl+V             Paste",
	"  Enter / Ctrl+S     Save",
	"  Esc                Cancel",
	"",
	"  ?                  Toggle this help",
	"  q / Ctrl+C         Quit",
}

var publicHelp = []string{
	"Public board:",
	"-------------",
	"  s                  Suggest something for the board",
	"  r                  Reload the published board",
	"  ?                  Toggle this help",
	"  q / Ctrl+C         Quit",
}

func (m model) helpLines() []string {
	title := "redstring help"
	lines := []string{title, strings.Repeat("=", len(title)), ""}
	lines = append(lines, commonHelp...)
	if m.editor != nil {
		return append(lines, editorHelp...)
	}
	return append(lines, publicHelp...)
}

func (m *model) handleHelpKey(key string) {
	switch key {
	case "j", "down":
		maxScroll := len(m.helpLines()) - max(m.height-1, 1)
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
}

func (m model) helpView() string {
	helpLines := m.helpLines()
	visibleHeight := max(m.height-1, 1)

	startLine := m.helpScroll
	if startLine > len(helpLines)-visibleHeight {
		startLine = max(len(helpLines)-visibleHeight, 0)
	}
	endLine := min(startLine+visibleHeight, len(helpLines))

	result := strings.Join(helpLines[startLine:endLine], "\n")
	result += "\n" + fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close",
		startLine+1, endLine, len(helpLines))
	return result
}
