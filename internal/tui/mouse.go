package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"redstring/internal/geom"
	"redstring/internal/scene"
)

// wheelDelta is the deltaY reported for one wheel notch.
const wheelDelta = 100

// handleMouse feeds terminal mouse events to the scene. Cells are device
// coordinates, so the event position goes in as is.
func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.mode != ModeBoard || m.help {
		return nil
	}
	sc := m.scene()
	p := geom.Pt(float64(msg.X), float64(msg.Y))
	inside := m.vp.Contains(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if inside {
				sc.Wheel(p, -wheelDelta, msg.Ctrl)
			}
		case tea.MouseButtonWheelDown:
			if inside {
				sc.Wheel(p, wheelDelta, msg.Ctrl)
			}
		case tea.MouseButtonLeft:
			if inside {
				m.clearMessages()
				sc.PointerDown(p)
			}
		}
	case tea.MouseActionMotion:
		if inside || sc.State() != scene.Idle {
			sc.PointerMove(p)
		}
	case tea.MouseActionRelease:
		sc.PointerUp(p)
	}
	return m.takePrompt()
}
