// Package render draws a board: into a grid of terminal cells for the
// interactive view and the text export, and into a PNG image.
package render

import "redstring/internal/geom"

// Viewport is a block of terminal cells used as a drawing surface. Device
// coordinates are cell coordinates: the cell at column c, row r is sampled
// at (c, r). Surface-local coordinates are board units centered on the
// viewport.
type Viewport struct {
	OriginCol, OriginRow int
	Cols, Rows           int
	CellW, CellH         float64
}

func (v Viewport) ScreenCTM() geom.Affine {
	cw, ch := v.CellW, v.CellH
	if cw <= 0 {
		cw = 1
	}
	if ch <= 0 {
		ch = 1
	}
	return geom.Translate(float64(v.OriginCol)+float64(v.Cols)/2, float64(v.OriginRow)+float64(v.Rows)/2).
		Mul(geom.ScaleXY(1/cw, 1/ch))
}

func (v Viewport) Bounds() geom.Rect {
	return geom.Rect{X: float64(v.OriginCol), Y: float64(v.OriginRow), W: float64(v.Cols), H: float64(v.Rows)}
}

// Contains reports whether the terminal cell (col, row) is inside v.
func (v Viewport) Contains(col, row int) bool {
	return col >= v.OriginCol && col < v.OriginCol+v.Cols && row >= v.OriginRow && row < v.OriginRow+v.Rows
}
