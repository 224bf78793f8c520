// Package geometry holds the pure rectangle math used while composing a post:
// clamping, resize handle arithmetic and alignment guide detection.
package geometry

import (
	"fmt"
	"math"
)

// DefaultSnapTolerance is the distance in pixels under which a guide lights up.
const DefaultSnapTolerance = 5.0

// Point is a position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Position is the top-left corner of a box relative to the canvas origin.
type Position struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// Size is a box size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is a positioned box on the canvas.
type Rect struct {
	Position
	Size
}

// NewRect creates a Rect.
func NewRect(left, top, width, height float64) Rect {
	return Rect{Position: Position{Left: left, Top: top}, Size: Size{Width: width, Height: height}}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Scale multiplies position and size by independent x and y factors.
func (r Rect) Scale(sx, sy float64) Rect {
	return NewRect(r.Left*sx, r.Top*sy, r.Width*sx, r.Height*sy)
}

// epsilon absorbs float rounding when an edge is clamped exactly to the canvas.
const epsilon = 1e-9

// Inside reports whether r lies fully within a canvas of the given size.
func (r Rect) Inside(canvas Size) bool {
	return r.Left >= 0 && r.Top >= 0 &&
		r.Right() <= canvas.Width+epsilon && r.Bottom() <= canvas.Height+epsilon
}

// SizeLimits bounds a layer's size. A zero maximum means unbounded.
type SizeLimits struct {
	MinWidth  float64 `json:"minWidth"`
	MinHeight float64 `json:"minHeight"`
	MaxWidth  float64 `json:"maxWidth,omitempty"`
	MaxHeight float64 `json:"maxHeight,omitempty"`
}

// Handle is one of the eight compass-point resize grips.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleW  Handle = "w"
	HandleE  Handle = "e"
	HandleSW Handle = "sw"
	HandleS  Handle = "s"
	HandleSE Handle = "se"
)

// Handles lists every resize handle.
var Handles = []Handle{HandleNW, HandleN, HandleNE, HandleW, HandleE, HandleSW, HandleS, HandleSE}

// ParseHandle validates a handle name.
func ParseHandle(s string) (Handle, error) {
	for _, h := range Handles {
		if string(h) == s {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown resize handle %q", s)
}

func (h Handle) movesLeft() bool   { return h == HandleNW || h == HandleW || h == HandleSW }
func (h Handle) movesRight() bool  { return h == HandleNE || h == HandleE || h == HandleSE }
func (h Handle) movesTop() bool    { return h == HandleNW || h == HandleN || h == HandleNE }
func (h Handle) movesBottom() bool { return h == HandleSW || h == HandleS || h == HandleSE }

// Clamp limits value to [min, max]. When max < min the lower bound wins.
func Clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(value, max))
}

// ConstrainPosition keeps a box of the given size inside the canvas.
func ConstrainPosition(pos Position, size Size, canvas Size) Position {
	return Position{
		Left: Clamp(pos.Left, 0, canvas.Width-size.Width),
		Top:  Clamp(pos.Top, 0, canvas.Height-size.Height),
	}
}

// ConstrainRect applies the size limits and then the position clamp. It is
// used for direct frame writes that do not come from a handle.
func ConstrainRect(r Rect, limits SizeLimits, canvas Size) Rect {
	w := floorAndCap(r.Width, limits.MinWidth, limits.MaxWidth, canvas.Width)
	h := floorAndCap(r.Height, limits.MinHeight, limits.MaxHeight, canvas.Height)
	size := Size{Width: w, Height: h}
	return Rect{Position: ConstrainPosition(r.Position, size, canvas), Size: size}
}

// ApplyResize computes the box produced by dragging handle by delta from a
// gesture that started with initial. Edges the handle does not touch stay put.
//
// Size is floored to the minimum, then capped by the room left on the canvas
// measured from the fixed edge, and only then is the position reconciled, so
// a resize that would leave the canvas shrinks the box instead of sliding
// its anchor.
func ApplyResize(handle Handle, delta Point, initial Rect, limits SizeLimits, canvas Size) Rect {
	width, height := initial.Width, initial.Height
	switch {
	case handle.movesLeft():
		width = initial.Width - delta.X
	case handle.movesRight():
		width = initial.Width + delta.X
	}
	switch {
	case handle.movesTop():
		height = initial.Height - delta.Y
	case handle.movesBottom():
		height = initial.Height + delta.Y
	}

	// (a) minimum floor
	width = math.Max(width, limits.MinWidth)
	height = math.Max(height, limits.MinHeight)
	if limits.MaxWidth > 0 {
		width = math.Min(width, limits.MaxWidth)
	}
	if limits.MaxHeight > 0 {
		height = math.Min(height, limits.MaxHeight)
	}

	// (b) room from the fixed edge
	if handle.movesLeft() {
		width = math.Min(width, initial.Right())
	} else {
		width = math.Min(width, canvas.Width-initial.Left)
	}
	if handle.movesTop() {
		height = math.Min(height, initial.Bottom())
	} else {
		height = math.Min(height, canvas.Height-initial.Top)
	}

	left, top := initial.Left, initial.Top
	if handle.movesLeft() {
		left = initial.Right() - width
	}
	if handle.movesTop() {
		top = initial.Bottom() - height
	}

	// (c) final clamp
	size := Size{Width: width, Height: height}
	return Rect{Position: ConstrainPosition(Position{Left: left, Top: top}, size, canvas), Size: size}
}

func floorAndCap(v, min, max, room float64) float64 {
	v = math.Max(v, min)
	if max > 0 {
		v = math.Min(v, max)
	}
	if room > 0 {
		v = math.Min(v, room)
	}
	return v
}
