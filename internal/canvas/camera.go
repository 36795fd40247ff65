// Package canvas implements the view transform over the logical canvas: a
// pan offset plus a uniform scale, the gesture state machine feeding it, and
// the connector curve geometry. Everything is pure data; no rendering surface
// is involved.
package canvas

import (
	"mindcanvas/internal/layout"
	"mindcanvas/internal/model"
)

// Point is a position in either screen or logical space; the function
// signatures say which.
type Point struct {
	X float64
	Y float64
}

// Size is a viewport extent in screen pixels.
type Size struct {
	Width  float64
	Height float64
}

// Scale bounds and the multiplicative wheel step.
const (
	MinScale        = 0.2
	MaxScale        = 3.0
	WheelZoomFactor = 1.2
)

// DefaultViewport is used when the caller does not know its real extent.
var DefaultViewport = Size{Width: 1280, Height: 800}

// Camera is the affine view transform: screen = logical*Scale + Pan.
type Camera struct {
	PanX     float64
	PanY     float64
	Scale    float64
	Viewport Size
}

// NewCamera returns an identity camera over the given viewport.
func NewCamera(viewport Size) *Camera {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport
	}
	return &Camera{Scale: 1, Viewport: viewport}
}

// ToLogical converts a screen point into logical canvas coordinates.
func (c *Camera) ToLogical(p Point) Point {
	return Point{
		X: (p.X - c.PanX) / c.Scale,
		Y: (p.Y - c.PanY) / c.Scale,
	}
}

// ToScreen converts a logical point into screen coordinates.
func (c *Camera) ToScreen(p Point) Point {
	return Point{
		X: p.X*c.Scale + c.PanX,
		Y: p.Y*c.Scale + c.PanY,
	}
}

// Center returns the viewport center in screen coordinates.
func (c *Camera) Center() Point {
	return Point{X: c.Viewport.Width / 2, Y: c.Viewport.Height / 2}
}

// ZoomAt sets the scale, keeping the logical point under anchor fixed on
// screen. A nil anchor zooms on the viewport center.
func (c *Camera) ZoomAt(anchor *Point, newScale float64) {
	a := c.Center()
	if anchor != nil {
		a = *anchor
	}
	logical := c.ToLogical(a)
	c.Scale = ClampScale(newScale)
	c.PanX = a.X - logical.X*c.Scale
	c.PanY = a.Y - logical.Y*c.Scale
}

// ZoomStep applies one wheel notch in or out around the anchor.
func (c *Camera) ZoomStep(anchor *Point, in bool) {
	factor := WheelZoomFactor
	if !in {
		factor = 1 / WheelZoomFactor
	}
	c.ZoomAt(anchor, c.Scale*factor)
}

// PanBy shifts the view by a screen-space delta.
func (c *Camera) PanBy(dx, dy float64) {
	c.PanX += dx
	c.PanY += dy
}

// Reset restores scale 1 and centers the focus node in the viewport. A nil or
// unplaced focus centers the canonical origin instead.
func (c *Camera) Reset(focus *model.NodeData) {
	c.Scale = 1
	x, y := layout.OriginX, layout.OriginY
	var w, h float64
	if focus != nil && focus.HasPosition() {
		x, y = focus.X, focus.Y
		w, h = focus.Width, focus.Height
	}
	c.PanX = c.Viewport.Width/2 - (x + w/2)
	c.PanY = c.Viewport.Height/2 - (y + h/2)
}

// ClampScale bounds s to the valid zoom range.
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
