package xdgshell

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wlhost/waycore/internal/surface"
)

func TestPositionerResolveAnchorTopLeftGravityBottomRight(t *testing.T) {
	p := &Positioner{
		width: 50, height: 30,
		anchorRect: surface.Rect{X: 100, Y: 200, Width: 20, Height: 10},
		anchor:     AnchorTopLeft,
		gravity:    GravityBottomRight,
	}
	geom := p.Resolve()
	require.Equal(t, int32(100), geom.X)
	require.Equal(t, int32(200), geom.Y)
	require.Equal(t, int32(50), geom.Width)
	require.Equal(t, int32(30), geom.Height)
}

func TestPositionerResolveGravityTopLeftShiftsBackByExtent(t *testing.T) {
	p := &Positioner{
		width: 50, height: 30,
		anchorRect: surface.Rect{X: 100, Y: 200, Width: 20, Height: 10},
		anchor:     AnchorBottomRight,
		gravity:    GravityTopLeft,
	}
	geom := p.Resolve()
	// anchor point is (120, 210); gravity top-left pulls the popup back by
	// its own width/height so it grows up and to the left of the anchor.
	require.Equal(t, int32(70), geom.X)
	require.Equal(t, int32(180), geom.Y)
}

func TestPositionerResolveAppliesOffset(t *testing.T) {
	p := &Positioner{
		width: 10, height: 10,
		anchorRect: surface.Rect{X: 0, Y: 0, Width: 0, Height: 0},
		offsetX:    5, offsetY: 7,
	}
	geom := p.Resolve()
	require.Equal(t, int32(5), geom.X)
	require.Equal(t, int32(7), geom.Y)
}

func TestConstrainSlideClampsWithinBounds(t *testing.T) {
	p := &Positioner{constraint: ConstraintSlideX | ConstraintSlideY}
	bounds := surface.Rect{X: 0, Y: 0, Width: 100, Height: 100}

	geom := surface.Rect{X: -10, Y: 50, Width: 20, Height: 20}
	out := p.Constrain(geom, bounds)
	require.Equal(t, int32(0), out.X)

	geom = surface.Rect{X: 90, Y: 50, Width: 20, Height: 20}
	out = p.Constrain(geom, bounds)
	require.Equal(t, int32(80), out.X)
}

func TestConstrainNoAdjustmentLeavesGeometryUnchanged(t *testing.T) {
	p := &Positioner{}
	bounds := surface.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	geom := surface.Rect{X: -10, Y: -10, Width: 20, Height: 20}
	out := p.Constrain(geom, bounds)
	require.Equal(t, geom, out)
}
