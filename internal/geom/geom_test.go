package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineInverseRoundTrip(t *testing.T) {
	m := Translate(30, -12).Mul(ScaleXY(2.5, 0.5))
	inv, ok := m.Inverse()
	require.True(t, ok)

	for _, p := range []Point{{0, 0}, {10, 20}, {-7.5, 3.25}} {
		back := inv.Apply(m.Apply(p))
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestAffineSingular(t *testing.T) {
	_, ok := ScaleXY(0, 1).Inverse()
	assert.False(t, ok)
}

func TestMulAppliesRightFirst(t *testing.T) {
	m := Translate(10, 0).Mul(ScaleXY(2, 2))
	assert.Equal(t, Point{12, 2}, m.Apply(Point{1, 1}))
}

func TestRotate(t *testing.T) {
	p := Point{0, -10}.Rotate(90)
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}

func TestRotationMatchesPointRotate(t *testing.T) {
	p := Point{3, -4}
	a := Rotation(33).Apply(p)
	b := p.Rotate(33)
	assert.InDelta(t, b.X, a.X, 1e-12)
	assert.InDelta(t, b.Y, a.Y, 1e-12)
}

func TestCubicEndpointsAndFlatten(t *testing.T) {
	c := Cubic{Point{0, 0}, Point{10, 30}, Point{20, 30}, Point{30, 0}}
	assert.Equal(t, c.P0, c.At(0))
	assert.Equal(t, c.P3, c.At(1))

	pts := c.Flatten(8)
	require.Len(t, pts, 9)
	assert.Equal(t, c.P0, pts[0])
	assert.Equal(t, c.P3, pts[8])
}

func TestDistToPolyline(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 10}}
	assert.InDelta(t, 2, DistToPolyline(Point{5, 2}, pts), 1e-12)
	assert.InDelta(t, 3, DistToPolyline(Point{13, 5}, pts), 1e-12)
	assert.InDelta(t, 5, DistToPolyline(Point{-3, 4}, pts), 1e-12)
}
