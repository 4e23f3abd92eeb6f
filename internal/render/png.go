package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"redstring/internal/board"
	"redstring/internal/geom"
	"redstring/internal/scene"
)

var (
	corkColor   = color.RGBA{0xc8, 0x9f, 0x6b, 0xff}
	paperColor  = color.RGBA{0xf9, 0xf6, 0xef, 0xff}
	edgeColor   = color.RGBA{0xa0, 0x8a, 0x70, 0xff}
	inkColor    = color.RGBA{0x11, 0x18, 0x27, 0xff}
	subInkColor = color.RGBA{0x2e, 0x2b, 0x26, 0xff}
	stringColor = color.RGBA{0xa3, 0x3a, 0x30, 0xff}
	pinColor    = color.RGBA{0xdc, 0x26, 0x26, 0xff}
)

// PNGOptions controls the image export.
type PNGOptions struct {
	// Scale is pixels per board unit.
	Scale float64
	// Padding is the margin around the board, in board units.
	Padding float64
	// Reasons writes each string's reason at its midpoint.
	Reasons bool
}

// MaxPNGSide is the largest image edge in pixels. Boards that would be
// bigger are drawn at a smaller scale.
const MaxPNGSide = 8192

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Scale: 1, Padding: 60, Reasons: true}
}

// ExportPNG draws the whole board, independent of any camera, into a PNG
// file.
func ExportPNG(doc *board.Document, filename string, opts PNGOptions) error {
	dc, err := DrawPNG(doc, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(filename)
}

// DrawPNG renders the board into a drawing context sized to fit it.
func DrawPNG(doc *board.Document, opts PNGOptions) (*gg.Context, error) {
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(p geom.Point) {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	for _, n := range doc.Nodes {
		m := scene.NodeMatrix(n)
		r := scene.CardRect
		for _, corner := range []geom.Point{{X: r.X, Y: r.Y}, {X: r.X + r.W, Y: r.Y}, {X: r.X, Y: r.Y + r.H}, {X: r.X + r.W, Y: r.Y + r.H}} {
			grow(m.Apply(corner))
		}
	}
	curves := drawableStrings(doc)
	for _, s := range curves {
		for _, p := range []geom.Point{s.curve.P0, s.curve.P1, s.curve.P2, s.curve.P3} {
			grow(p)
		}
	}

	minX -= opts.Padding
	minY -= opts.Padding
	maxX += opts.Padding
	maxY += opts.Padding

	if side := math.Max(maxX-minX, maxY-minY); side*opts.Scale > MaxPNGSide {
		opts.Scale = MaxPNGSide / side
	}
	imageWidth := min(int(math.Ceil((maxX-minX)*opts.Scale)), MaxPNGSide)
	imageHeight := min(int(math.Ceil((maxY-minY)*opts.Scale)), MaxPNGSide)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(corkColor)
	dc.Clear()

	faces, err := loadFaces()
	if err != nil {
		return nil, err
	}

	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(-minX, -minY)

	for _, n := range doc.Nodes {
		drawCardPNG(dc, n, faces)
	}
	for _, s := range curves {
		drawStringPNG(dc, s, faces, opts.Reasons)
	}
	return dc, nil
}

type fontFaces struct {
	title, meta, small font.Face
}

func loadFaces() (fontFaces, error) {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fontFaces{}, fmt.Errorf("failed to parse font: %v", err)
	}
	face := func(size float64) font.Face {
		return truetype.NewFace(ttfFont, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	return fontFaces{title: face(26), meta: face(16), small: face(13)}, nil
}

type pngString struct {
	curve  geom.Cubic
	reason string
}

// drawableStrings resolves links the same way the interactive board does:
// dangling ends and unplaced notes drop the link.
func drawableStrings(doc *board.Document) []pngString {
	var out []pngString
	for _, l := range doc.Links {
		src, dst, ok := doc.Resolve(l)
		if !ok {
			continue
		}
		if _, ok := src.Pos(); !ok {
			continue
		}
		if _, ok := dst.Pos(); !ok {
			continue
		}
		out = append(out, pngString{
			curve:  scene.StringCurve(scene.PinAnchor(src), scene.PinAnchor(dst)),
			reason: l.Reason,
		})
	}
	return out
}

func drawCardPNG(dc *gg.Context, n *board.Node, faces fontFaces) {
	pos := scene.Position(n)
	dc.Push()
	dc.Translate(pos.X, pos.Y)
	dc.Rotate(gg.Radians(n.AngleDeg()))

	dc.DrawRoundedRectangle(-scene.NoteW/2, -scene.NoteH/2, scene.NoteW, scene.NoteH, 3)
	dc.SetColor(paperColor)
	dc.FillPreserve()
	dc.SetColor(edgeColor)
	dc.SetLineWidth(1.2)
	dc.Stroke()

	left := -scene.NoteW/2 + 16
	dc.SetFontFace(faces.title)
	dc.SetColor(inkColor)
	dc.DrawString(n.Title, left, -scene.NoteH/2+48)

	dc.SetFontFace(faces.meta)
	dc.SetColor(subInkColor)
	dc.DrawString(metaLine(n), left, -scene.NoteH/2+78)
	if len(n.Genres) > 0 {
		dc.DrawString(strings.Join(firstN(n.Genres, 3), " • "), left, -scene.NoteH/2+102)
	}

	dc.SetColor(pinColor)
	dc.DrawCircle(scene.PinLocal.X, scene.PinLocal.Y, 7)
	dc.Fill()
	dc.Pop()
}

func drawStringPNG(dc *gg.Context, s pngString, faces fontFaces, reasons bool) {
	c := s.curve
	dc.MoveTo(c.P0.X, c.P0.Y)
	dc.CubicTo(c.P1.X, c.P1.Y, c.P2.X, c.P2.Y, c.P3.X, c.P3.Y)
	dc.SetColor(stringColor)
	dc.SetLineWidth(3)
	dc.Stroke()

	if reasons && s.reason != "" {
		mid := c.At(0.5)
		dc.SetFontFace(faces.small)
		w, h := dc.MeasureString(s.reason)
		dc.SetColor(inkColor)
		dc.DrawRoundedRectangle(mid.X-w/2-8, mid.Y-h-12, w+16, h+10, 6)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawStringAnchored(s.reason, mid.X, mid.Y-h/2-7, 0.5, 0.5)
	}
}
