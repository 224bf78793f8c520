package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func kinds(guides []Guide) []GuideKind {
	out := make([]GuideKind, 0, len(guides))
	for _, g := range guides {
		out = append(out, g.Kind)
	}
	return out
}

func TestDetectSnapCenterTolerance(t *testing.T) {
	size := Size{Width: 100, Height: 40}
	cx := canvas.Width / 2
	tol := DefaultSnapTolerance

	for _, sign := range []float64{-1, 1} {
		within := NewRect(cx+sign*(tol-1)-size.Width/2, 200, size.Width, size.Height)
		assert.Contains(t, kinds(DetectSnap(within, canvas, tol)), GuideCenterVertical)

		outside := NewRect(cx+sign*(tol+1)-size.Width/2, 200, size.Width, size.Height)
		assert.NotContains(t, kinds(DetectSnap(outside, canvas, tol)), GuideCenterVertical)
	}
}

func TestDetectSnapMultipleGuides(t *testing.T) {
	r := NewRect(0, 0, canvas.Width, canvas.Height)
	got := kinds(DetectSnap(r, canvas, 0))
	assert.ElementsMatch(t, []GuideKind{
		GuideCenterVertical, GuideCenterHorizontal, GuideLeft, GuideRight, GuideTop, GuideBottom,
	}, got)
}

func TestDetectSnapGuideOffsets(t *testing.T) {
	r := NewRect(canvas.Width-100, canvas.Height-40, 100, 40)
	guides := DetectSnap(r, canvas, DefaultSnapTolerance)
	assert.Equal(t, []Guide{
		{Kind: GuideRight, Vertical: true, Offset: canvas.Width},
		{Kind: GuideBottom, Offset: canvas.Height},
	}, guides)
}

func TestMeasure(t *testing.T) {
	m := Measure(NewRect(12.4, 100, 200.6, 40), canvas)
	assert.Equal(t, "201 × 40px | 12, 100", m.Text)
	assert.InDelta(t, 112.7, m.X, 1e-9)
	assert.Equal(t, 70.0, m.Y)

	m = Measure(NewRect(0, 5, 100, 40), canvas)
	assert.Equal(t, 10.0, m.Y)
}
