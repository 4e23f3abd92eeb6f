// Package camera keeps the pan/zoom transform of a board view and persists
// it into a named slot of a key-value store.
package camera

import (
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"redstring/internal/geom"
	"redstring/internal/kv"
)

const (
	MinScale = 0.2
	MaxScale = 5.0

	// ButtonStep is the zoom factor of the +/- controls.
	ButtonStep = 1.1
)

// State is the persisted form of a camera, stored as {"k":..,"tx":..,"ty":..}.
type State struct {
	K  float64 `json:"k"`
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

func IdentityState() State {
	return State{K: 1}
}

func (s State) valid() bool {
	for _, v := range []float64{s.K, s.TX, s.TY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return s.K > 0
}

// Surface is the drawing surface a camera is attached to. ScreenCTM maps
// surface-local coordinates to device coordinates and is queried on every
// conversion because the surface may move or be rescaled by layout.
type Surface interface {
	ScreenCTM() geom.Affine
	Bounds() geom.Rect
}

type Camera struct {
	state  State
	store  kv.Store
	key    string
	logger *zap.Logger
}

// New restores the camera stored under key, falling back to the identity
// camera on any read or decode failure.
func New(store kv.Store, key string, logger *zap.Logger) *Camera {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Camera{state: IdentityState(), store: store, key: key, logger: logger}
	c.load()
	return c
}

func (c *Camera) load() {
	if c.store == nil {
		return
	}
	raw, err := c.store.Get(c.key)
	if err != nil {
		c.logger.Debug("camera not restored", zap.String("key", c.key), zap.Error(err))
		return
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil || !s.valid() {
		c.logger.Debug("camera slot unreadable", zap.String("key", c.key), zap.Error(err))
		return
	}
	s.K = clamp(s.K)
	c.state = s
}

func (c *Camera) persist() {
	if c.store == nil {
		return
	}
	raw, err := json.Marshal(c.state)
	if err == nil {
		err = c.store.Set(c.key, raw)
	}
	if err != nil {
		c.logger.Debug("camera not persisted", zap.String("key", c.key), zap.Error(err))
	}
}

func (c *Camera) State() State { return c.state }

// Matrix maps world coordinates to surface-local coordinates:
// translate(tx,ty) then scale(k).
func (c *Camera) Matrix() geom.Affine {
	return geom.Translate(c.state.TX, c.state.TY).Mul(geom.ScaleXY(c.state.K, c.state.K))
}

func (c *Camera) WorldToSurface(w geom.Point) geom.Point {
	return c.Matrix().Apply(w)
}

func (c *Camera) SurfaceToWorld(s geom.Point) geom.Point {
	return geom.Point{
		X: (s.X - c.state.TX) / c.state.K,
		Y: (s.Y - c.state.TY) / c.state.K,
	}
}

// ScreenToSurface converts a device point into surface-local coordinates.
func ScreenToSurface(surf Surface, p geom.Point) geom.Point {
	inv, ok := surf.ScreenCTM().Inverse()
	if !ok {
		return geom.Point{}
	}
	return inv.Apply(p)
}

// ScreenToWorld converts a device point into world coordinates using the
// surface matrix as it is right now.
func (c *Camera) ScreenToWorld(surf Surface, p geom.Point) geom.Point {
	inv, ok := surf.ScreenCTM().Mul(c.Matrix()).Inverse()
	if !ok {
		return geom.Point{}
	}
	return inv.Apply(p)
}

// WorldToScreen is the forward transform, used by renderers.
func (c *Camera) WorldToScreen(surf Surface, w geom.Point) geom.Point {
	return surf.ScreenCTM().Mul(c.Matrix()).Apply(w)
}

// Zoom scales by factor around the device point focal: the world point
// under focal before the zoom is still under it afterwards.
func (c *Camera) Zoom(surf Surface, focal geom.Point, factor float64) {
	local := ScreenToSurface(surf, focal)
	world := c.ScreenToWorld(surf, focal)

	k := clamp(c.state.K * factor)
	c.state = State{
		K:  k,
		TX: local.X - k*world.X,
		TY: local.Y - k*world.Y,
	}
	c.persist()
}

// ZoomAtCenter is the button-driven zoom anchored at the viewport center.
func (c *Camera) ZoomAtCenter(surf Surface, factor float64) {
	b := surf.Bounds()
	c.Zoom(surf, geom.Point{X: b.X + b.W/2, Y: b.Y + b.H/2}, factor)
}

// Pan shifts the view by a surface-local delta. The delta is not divided
// by k: it was measured in the same space the translation lives in.
func (c *Camera) Pan(dx, dy float64) {
	c.state.TX += dx
	c.state.TY += dy
	c.persist()
}

func (c *Camera) Reset() {
	c.state = IdentityState()
	c.persist()
}

// WheelFactor turns a wheel notch into a zoom factor. With ctrl held
// (trackpad pinch) the factor is continuous in deltaY.
func WheelFactor(deltaY float64, ctrl bool) float64 {
	if ctrl {
		return math.Exp(-deltaY * 0.002)
	}
	if deltaY > 0 {
		return 0.9
	}
	return 1.1
}

func clamp(k float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, k))
}
