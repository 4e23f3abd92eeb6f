package tui

import "redstring/internal/geom"

// Keyboard steps, in cells.
const (
	panCols  = 4
	panRows  = 2
	moveCols = 2
	moveRows = 1
)

func direction(key string) (dx, dy int) {
	switch key {
	case "h", "left", "H", "shift+left":
		return -1, 0
	case "l", "right", "L", "shift+right":
		return 1, 0
	case "k", "up", "K", "shift+up":
		return 0, -1
	case "j", "down", "J", "shift+down":
		return 0, 1
	}
	return 0, 0
}

func isDirection(key string) bool {
	dx, dy := direction(key)
	return dx != 0 || dy != 0
}

func getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

// handlePan moves the view in the direction of key; the board slides the
// other way.
func (m *model) handlePan(key string) {
	dx, dy := direction(key)
	speed := float64(getMoveSpeed(key))
	m.scene().Camera().Pan(
		-float64(dx)*panCols*speed*m.vp.CellW,
		-float64(dy)*panRows*speed*m.vp.CellH,
	)
}

// handleNodeMove nudges the note being moved by whole cells at the current
// zoom.
func (m *model) handleNodeMove(key string) {
	n := m.editor.Document().Find(m.moveID)
	if n == nil {
		return
	}
	dx, dy := direction(key)
	speed := float64(getMoveSpeed(key))
	k := m.scene().Camera().State().K
	pos, _ := n.Pos()
	n.SetPos(pos.Add(geom.Pt(
		float64(dx)*moveCols*speed*m.vp.CellW/k,
		float64(dy)*moveRows*speed*m.vp.CellH/k,
	)))
}

func (m *model) startMove() bool {
	id := m.scene().Hovered()
	n := m.editor.Document().Find(id)
	if n == nil {
		return false
	}
	m.moveID = id
	m.moveFrom = nil
	if p, ok := n.Pos(); ok {
		m.moveFrom = &p
	}
	m.mode = ModeMove
	return true
}

// finishMove puts the note back where it started and replays the move
// through the editor so it lands in the history as one step.
func (m *model) finishMove(commit bool) {
	n := m.editor.Document().Find(m.moveID)
	m.mode = ModeBoard
	if n == nil {
		return
	}
	to, _ := n.Pos()
	if m.moveFrom != nil {
		n.SetPos(*m.moveFrom)
	} else {
		n.ClearPos()
	}
	if commit && (m.moveFrom == nil || *m.moveFrom != to) {
		if err := m.editor.Move(m.moveID, to); err != nil {
			m.fail(err)
		}
	}
	m.moveID = ""
	m.moveFrom = nil
}
