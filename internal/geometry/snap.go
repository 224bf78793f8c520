package geometry

import (
	"fmt"
	"math"
)

// GuideKind names an alignment reference line on the canvas.
type GuideKind string

const (
	GuideCenterVertical   GuideKind = "center-vertical"
	GuideCenterHorizontal GuideKind = "center-horizontal"
	GuideLeft             GuideKind = "left"
	GuideRight            GuideKind = "right"
	GuideTop              GuideKind = "top"
	GuideBottom           GuideKind = "bottom"
)

// Guide is an active alignment line. Vertical guides carry an x offset,
// horizontal guides a y offset, both in canvas coordinates.
type Guide struct {
	Kind     GuideKind `json:"kind"`
	Vertical bool      `json:"vertical"`
	Offset   float64   `json:"offset"`
}

// DetectSnap compares the box's center and edges with the canvas center and
// edges and returns every guide within tolerance. It never moves the box.
func DetectSnap(r Rect, canvas Size, tolerance float64) []Guide {
	if tolerance <= 0 {
		tolerance = DefaultSnapTolerance
	}
	center := r.Center()
	cx, cy := canvas.Width/2, canvas.Height/2

	near := func(a, b float64) bool { return math.Abs(a-b) < tolerance }

	guides := make([]Guide, 0, 6)
	if near(center.X, cx) {
		guides = append(guides, Guide{Kind: GuideCenterVertical, Vertical: true, Offset: cx})
	}
	if near(center.Y, cy) {
		guides = append(guides, Guide{Kind: GuideCenterHorizontal, Offset: cy})
	}
	if near(r.Left, 0) {
		guides = append(guides, Guide{Kind: GuideLeft, Vertical: true, Offset: 0})
	}
	if near(r.Right(), canvas.Width) {
		guides = append(guides, Guide{Kind: GuideRight, Vertical: true, Offset: canvas.Width})
	}
	if near(r.Top, 0) {
		guides = append(guides, Guide{Kind: GuideTop, Offset: 0})
	}
	if near(r.Bottom(), canvas.Height) {
		guides = append(guides, Guide{Kind: GuideBottom, Offset: canvas.Height})
	}
	return guides
}

// Measurement is the size/position readout shown above a layer during a gesture.
type Measurement struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Measure builds the readout for r, anchored at the box's horizontal middle
// 30px above it and kept inside the canvas vertically.
func Measure(r Rect, canvas Size) Measurement {
	y := Clamp(r.Top-30, 10, canvas.Height-30)
	return Measurement{
		Text: fmt.Sprintf("%d × %dpx | %d, %d",
			int(math.Round(r.Width)), int(math.Round(r.Height)),
			int(math.Round(r.Left)), int(math.Round(r.Top))),
		X: r.Left + r.Width/2,
		Y: y,
	}
}
