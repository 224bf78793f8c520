package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	canvas     = Size{Width: 500, Height: 625}
	textLimits = SizeLimits{MinWidth: 100, MinHeight: 40}
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 10.0, Clamp(42, 0, 10))
	// negative range collapses to the lower bound
	assert.Equal(t, 0.0, Clamp(7, 0, -20))
}

func TestConstrainPosition(t *testing.T) {
	size := Size{Width: 200, Height: 50}

	pos := ConstrainPosition(Position{Left: 10000, Top: -5}, size, canvas)
	assert.Equal(t, canvas.Width-size.Width, pos.Left)
	assert.Equal(t, 0.0, pos.Top)

	wide := Size{Width: 800, Height: 50}
	pos = ConstrainPosition(Position{Left: 40, Top: 40}, wide, canvas)
	assert.Equal(t, 0.0, pos.Left)
}

func TestApplyResizeKeepsOppositeEdges(t *testing.T) {
	initial := NewRect(100, 200, 200, 80)
	delta := Point{X: 37, Y: -23}

	tests := []struct {
		handle                                   Handle
		keepLeft, keepTop, keepRight, keepBottom bool
	}{
		{HandleSE, true, true, false, false},
		{HandleS, true, true, true, false},
		{HandleE, true, true, false, true},
		{HandleNW, false, false, true, true},
		{HandleN, true, false, true, true},
		{HandleW, false, true, true, true},
		{HandleNE, true, false, false, true},
		{HandleSW, false, true, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.handle), func(t *testing.T) {
			got := ApplyResize(tt.handle, delta, initial, textLimits, canvas)
			if tt.keepLeft {
				assert.Equal(t, initial.Left, got.Left)
			}
			if tt.keepTop {
				assert.Equal(t, initial.Top, got.Top)
			}
			if tt.keepRight {
				assert.InDelta(t, initial.Right(), got.Right(), 1e-9)
			}
			if tt.keepBottom {
				assert.InDelta(t, initial.Bottom(), got.Bottom(), 1e-9)
			}
			assert.True(t, got.Inside(canvas))
		})
	}
}

func TestApplyResizeFloorsTextMinimum(t *testing.T) {
	initial := NewRect(100, 100, 150, 60)
	for _, h := range Handles {
		got := ApplyResize(h, Point{X: 400, Y: 400}, initial, textLimits, canvas)
		assert.GreaterOrEqual(t, got.Width, 100.0, h)
		assert.GreaterOrEqual(t, got.Height, 40.0, h)

		got = ApplyResize(h, Point{X: -400, Y: -400}, initial, textLimits, canvas)
		assert.GreaterOrEqual(t, got.Width, 100.0, h)
		assert.GreaterOrEqual(t, got.Height, 40.0, h)
	}
}

func TestApplyResizeShrinksInsteadOfSliding(t *testing.T) {
	initial := NewRect(300, 500, 150, 60)

	got := ApplyResize(HandleSE, Point{X: 1000, Y: 1000}, initial, textLimits, canvas)
	assert.Equal(t, 300.0, got.Left)
	assert.Equal(t, 500.0, got.Top)
	assert.Equal(t, canvas.Width-300, got.Width)
	assert.Equal(t, canvas.Height-500, got.Height)

	got = ApplyResize(HandleNW, Point{X: -1000, Y: -1000}, initial, textLimits, canvas)
	assert.Equal(t, 0.0, got.Left)
	assert.Equal(t, 0.0, got.Top)
	assert.Equal(t, initial.Right(), got.Width)
	assert.Equal(t, initial.Bottom(), got.Height)
}

func TestApplyResizeOverlayCap(t *testing.T) {
	limits := SizeLimits{MinWidth: 20, MinHeight: 20, MaxWidth: 300, MaxHeight: 300}
	got := ApplyResize(HandleSE, Point{X: 900, Y: 900}, NewRect(0, 0, 100, 100), limits, Size{Width: 1000, Height: 1000})
	assert.Equal(t, 300.0, got.Width)
	assert.Equal(t, 300.0, got.Height)
}

func TestApplyResizeRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		h := Handles[rng.Intn(len(Handles))]
		initial := ConstrainRect(NewRect(rng.Float64()*400, rng.Float64()*560, 100+rng.Float64()*300, 40+rng.Float64()*200), textLimits, canvas)
		delta := Point{X: rng.Float64()*2000 - 1000, Y: rng.Float64()*2000 - 1000}

		got := ApplyResize(h, delta, initial, textLimits, canvas)
		require.True(t, got.Inside(canvas), "handle %s initial %+v delta %+v got %+v", h, initial, delta, got)
		require.GreaterOrEqual(t, got.Width, 100.0)
		require.GreaterOrEqual(t, got.Height, 40.0)
	}
}

func TestParseHandle(t *testing.T) {
	h, err := ParseHandle("sw")
	require.NoError(t, err)
	assert.Equal(t, HandleSW, h)

	_, err = ParseHandle("north")
	assert.Error(t, err)
}

func TestConstrainRect(t *testing.T) {
	got := ConstrainRect(NewRect(480, -10, 20, 10), textLimits, canvas)
	assert.Equal(t, NewRect(400, 0, 100, 40), got)
}
