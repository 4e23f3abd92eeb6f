package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"redstring/internal/board"
	"redstring/internal/geom"
	"redstring/internal/scene"
)

type cellStyle int

const (
	styleNone cellStyle = iota
	styleCard
	styleBorder
	styleHighlight
	styleTitle
	styleChip
	stylePin
	stylePreview
	stylePoster
	styleString
	styleStringHover
	styleLabel
)

var cellStyles = map[cellStyle]lipgloss.Style{
	styleCard:        lipgloss.NewStyle().Foreground(lipgloss.Color("#2e2b26")).Background(lipgloss.Color("#f9f6ef")),
	styleBorder:      lipgloss.NewStyle().Foreground(lipgloss.Color("#a08a70")).Background(lipgloss.Color("#f9f6ef")),
	styleHighlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Background(lipgloss.Color("#f9f6ef")).Bold(true),
	styleTitle:       lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Background(lipgloss.Color("#f9f6ef")).Bold(true),
	styleChip:        lipgloss.NewStyle().Foreground(lipgloss.Color("#b91c1c")).Background(lipgloss.Color("#fee2e2")).Bold(true),
	stylePin:         lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")),
	stylePreview:     lipgloss.NewStyle().Foreground(lipgloss.Color("#2d2a25")).Background(lipgloss.Color("#f4eee2")),
	stylePoster:      lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Background(lipgloss.Color("#e5e7eb")),
	styleString:      lipgloss.NewStyle().Foreground(lipgloss.Color("#a33a30")),
	styleStringHover: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
	styleLabel:       lipgloss.NewStyle().Foreground(lipgloss.Color("#f8fafc")).Background(lipgloss.Color("#111827")),
}

// Frame is one rendered picture of a board in terminal cells.
type Frame struct {
	Cols, Rows int
	cells      [][]rune
	styles     [][]cellStyle
}

func newFrame(cols, rows int) *Frame {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	f := &Frame{Cols: cols, Rows: rows, cells: make([][]rune, rows), styles: make([][]cellStyle, rows)}
	for r := range f.cells {
		f.cells[r] = make([]rune, cols)
		f.styles[r] = make([]cellStyle, cols)
		for c := range f.cells[r] {
			f.cells[r][c] = ' '
		}
	}
	return f
}

func (f *Frame) valid(c, r int) bool {
	return r >= 0 && r < f.Rows && c >= 0 && c < f.Cols
}

func (f *Frame) set(c, r int, ch rune, st cellStyle) {
	if f.valid(c, r) {
		f.cells[r][c] = ch
		f.styles[r][c] = st
	}
}

// Rune returns the character at frame cell (c, r).
func (f *Frame) Rune(c, r int) rune {
	if !f.valid(c, r) {
		return 0
	}
	return f.cells[r][c]
}

// Lines returns the frame without colors.
func (f *Frame) Lines() []string {
	out := make([]string, f.Rows)
	for r, row := range f.cells {
		out[r] = string(row)
	}
	return out
}

// Styled returns the frame with lipgloss colors applied, one run of equal
// style at a time.
func (f *Frame) Styled() []string {
	out := make([]string, f.Rows)
	for r, row := range f.cells {
		var line strings.Builder
		start := 0
		for c := 1; c <= len(row); c++ {
			if c < len(row) && f.styles[r][c] == f.styles[r][start] {
				continue
			}
			run := string(row[start:c])
			if st, ok := cellStyles[f.styles[r][start]]; ok {
				run = st.Render(run)
			}
			line.WriteString(run)
			start = c
		}
		out[r] = line.String()
	}
	return out
}

func (f *Frame) String() string {
	return strings.Join(f.Lines(), "\n")
}

// painter carries the transforms of one Draw call.
type painter struct {
	f      *Frame
	origin geom.Point // device coordinate of frame cell (0,0)
	fwd    geom.Affine
	inv    geom.Affine
}

func (p *painter) world(c, r int) geom.Point {
	return p.inv.Apply(geom.Point{X: p.origin.X + float64(c), Y: p.origin.Y + float64(r)})
}

func (p *painter) cell(w geom.Point) (int, int) {
	d := p.fwd.Apply(w)
	return int(math.Round(d.X - p.origin.X)), int(math.Round(d.Y - p.origin.Y))
}

// Draw renders the scene into its surface's cells: cards in document
// order, each followed by its open preview, then strings, then the hover
// label.
func Draw(sc *scene.Scene) *Frame {
	b := sc.Surface().Bounds()
	f := newFrame(int(b.W), int(b.H))
	fwd := sc.Surface().ScreenCTM().Mul(sc.Camera().Matrix())
	inv, ok := fwd.Inverse()
	if !ok {
		return f
	}
	p := &painter{f: f, origin: geom.Point{X: b.X, Y: b.Y}, fwd: fwd, inv: inv}

	for _, card := range sc.Cards() {
		p.card(card)
		if card.PreviewOpen {
			p.preview(card)
		}
	}
	for _, s := range sc.Strings() {
		p.strand(s)
	}
	if label, ok := sc.HoverLabel(); ok {
		p.label(label)
	}
	return f
}

// mask marks the cells whose sample point falls inside rect, given in the
// local frame of m.
func (p *painter) mask(m geom.Affine, rect geom.Rect) [][]bool {
	minv, ok := m.Inverse()
	if !ok {
		return nil
	}
	in := make([][]bool, p.f.Rows)
	for r := range in {
		in[r] = make([]bool, p.f.Cols)
		for c := range in[r] {
			in[r][c] = rect.Contains(minv.Apply(p.world(c, r)))
		}
	}
	return in
}

func inside(in [][]bool, c, r int) bool {
	return r >= 0 && r < len(in) && c >= 0 && c < len(in[r]) && in[r][c]
}

// fill paints a masked region with a rounded border.
func (p *painter) fill(in [][]bool, body, border cellStyle, heavy bool) {
	for r := range in {
		for c := range in[r] {
			if !in[r][c] {
				continue
			}
			up, down := inside(in, c, r-1), inside(in, c, r+1)
			left, right := inside(in, c-1, r), inside(in, c+1, r)
			switch {
			case up && down && left && right:
				p.f.set(c, r, ' ', body)
			default:
				p.f.set(c, r, borderRune(up, down, left, right, heavy), border)
			}
		}
	}
}

func borderRune(up, down, left, right, heavy bool) rune {
	switch {
	case !up && !left:
		if heavy {
			return '┏'
		}
		return '╭'
	case !up && !right:
		if heavy {
			return '┓'
		}
		return '╮'
	case !down && !left:
		if heavy {
			return '┗'
		}
		return '╰'
	case !down && !right:
		if heavy {
			return '┛'
		}
		return '╯'
	case !up || !down:
		if heavy {
			return '━'
		}
		return '─'
	}
	if heavy {
		return '┃'
	}
	return '│'
}

type textLine struct {
	y  float64 // local baseline
	s  string
	st cellStyle
}

// block writes lines of text into the interior of a masked region. Each
// line goes to the row of its baseline, kept inside the edges and below the
// previous line, and starts at left or the first interior column.
func (p *painter) block(in [][]bool, m geom.Affine, left float64, lines []textLine) {
	last := -1
	for r := range in {
		if firstInterior(in, r) >= 0 {
			last = r
		}
	}
	next := 0
	for _, l := range lines {
		if l.s == "" {
			continue
		}
		c, r := p.cell(m.Apply(geom.Point{X: left, Y: l.y - 8}))
		if r > last {
			r = last
		}
		if r < next {
			r = next
		}
		for r < len(in) && firstInterior(in, r) < 0 {
			r++
		}
		if r >= len(in) {
			return
		}
		if first := firstInterior(in, r); c < first {
			c = first
		}
		for _, ch := range l.s {
			if !interior(in, c, r) {
				break
			}
			p.f.set(c, r, ch, l.st)
			c++
		}
		next = r + 1
	}
}

func firstInterior(in [][]bool, r int) int {
	for c := range in[r] {
		if interior(in, c, r) {
			return c
		}
	}
	return -1
}

func interior(in [][]bool, c, r int) bool {
	return inside(in, c, r) && inside(in, c-1, r) && inside(in, c+1, r) && inside(in, c, r-1) && inside(in, c, r+1)
}

func (p *painter) card(card scene.Card) {
	n := card.Node
	in := p.mask(card.Matrix, scene.CardRect)
	if in == nil {
		return
	}
	border := styleBorder
	if card.Highlight {
		border = styleHighlight
	}
	p.fill(in, styleCard, border, card.Highlight)

	p.block(in, card.Matrix, -scene.NoteW/2+16, []textLine{
		{-scene.NoteH/2 + 48, n.Title, styleTitle},
		{-scene.NoteH/2 + 78, metaLine(n), styleCard},
		{-scene.NoteH/2 + 102, strings.Join(firstN(n.Genres, 3), " • "), styleCard},
	})

	for _, chip := range card.Chips {
		label := "[" + chip.Kind.Label() + "]"
		center := geom.Point{X: chip.Rect.X + chip.Rect.W/2, Y: chip.Rect.Y + chip.Rect.H/2}
		c, r := p.cell(card.Matrix.Apply(center))
		c -= len(label) / 2
		for i, ch := range label {
			p.f.set(c+i, r, ch, styleChip)
		}
	}

	pc, pr := p.cell(scene.PinAnchor(n))
	p.f.set(pc, pr, '●', stylePin)
}

func (p *painter) preview(card scene.Card) {
	n := card.Node
	m := card.Matrix.Mul(scene.PreviewMatrix(n))
	in := p.mask(m, scene.PreviewRect)
	if in == nil {
		return
	}
	p.fill(in, stylePreview, stylePreview, false)

	poster := p.mask(m, geom.Rect{X: 16, Y: 16, W: 140, H: 200})
	for r := range poster {
		for c := range poster[r] {
			if poster[r][c] && interior(in, c, r) {
				p.f.set(c, r, '░', stylePoster)
			}
		}
	}

	genres := "—"
	if len(n.Genres) > 0 {
		genres = strings.Join(firstN(n.Genres, 6), ", ")
	}
	lines := []textLine{
		{40, n.Title, stylePreview},
		{68, metaLine(n), stylePreview},
		{92, genres, stylePreview},
	}
	if n.Rating != nil {
		lines = append(lines, textLine{116, fmt.Sprintf("★ %.1f", *n.Rating), stylePreview})
	}
	lines = append(lines, textLine{scene.PreviewH - 18, "Click to open →", stylePreview})
	p.block(in, m, 170, lines)
}

func (p *painter) strand(s scene.String) {
	st := styleString
	if s.Hovered {
		st = styleStringHover
	}
	dev := s.Curve.Transform(p.fwd)
	coarse := dev.Flatten(16)
	length := 0.0
	for i := 1; i < len(coarse); i++ {
		length += coarse[i-1].Dist(coarse[i])
	}
	steps := int(math.Ceil(length*3)) + 2
	pts := dev.Flatten(steps)
	for i := 0; i < len(pts)-1; i++ {
		d := pts[i+1].Sub(pts[i])
		c := int(math.Round(pts[i].X - p.origin.X))
		r := int(math.Round(pts[i].Y - p.origin.Y))
		p.f.set(c, r, stringRune(d), st)
	}
}

// stringRune picks a line character for a step of direction d, measured
// in cells. Cells are about twice as tall as wide.
func stringRune(d geom.Point) rune {
	dx, dy := math.Abs(d.X), math.Abs(d.Y)*2
	switch {
	case dy < dx*0.5:
		return '─'
	case dx < dy*0.5:
		return '│'
	case (d.X > 0) == (d.Y > 0):
		return '╲'
	}
	return '╱'
}

func (p *painter) label(l scene.Label) {
	c, r := p.cell(l.At.Add(geom.Point{X: -178, Y: -37}))
	text := " " + l.Text + " "
	for i, ch := range text {
		p.f.set(c+i, r, ch, styleLabel)
	}
}

func metaLine(n *board.Node) string {
	return fmt.Sprintf("%s • %d", n.Kind.Label(), n.Year)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
