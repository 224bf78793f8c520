package scene

import (
	"math"

	"osonaiAPI/internal/geometry"
)

// AspectRatio is one of the supported post shapes.
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "4:5"
	AspectLandscape AspectRatio = "16:9"
)

// defaultViewportWidth is the on-screen canvas width assumed until the client reports one.
const defaultViewportWidth = 500

var exportSizes = map[AspectRatio][2]int{
	AspectSquare:    {1080, 1080},
	AspectPortrait:  {1080, 1350},
	AspectLandscape: {1080, 608},
}

// ParseAspectRatio validates a ratio. An empty string means 1:1.
func ParseAspectRatio(s string) (AspectRatio, error) {
	if s == "" {
		return AspectSquare, nil
	}
	a := AspectRatio(s)
	if _, ok := exportSizes[a]; !ok {
		return "", ErrInvalidAspectRatio
	}
	return a, nil
}

// ExportSize returns the raster dimensions for the ratio.
func (a AspectRatio) ExportSize() (width, height int) {
	s, ok := exportSizes[a]
	if !ok {
		s = exportSizes[AspectSquare]
	}
	return s[0], s[1]
}

// FitWidth returns the canvas size of this ratio for a given width.
func (a AspectRatio) FitWidth(width float64) geometry.Size {
	w, h := a.ExportSize()
	return geometry.Size{Width: width, Height: math.Round(width * float64(h) / float64(w))}
}

// Viewport is where the canvas currently sits on screen, in document pixels.
type Viewport struct {
	Origin geometry.Point `json:"origin"`
	Size   geometry.Size  `json:"size"`
}

// DefaultViewport is the viewport assumed for a ratio before the client reports its own.
func DefaultViewport(a AspectRatio) Viewport {
	return Viewport{Size: a.FitWidth(defaultViewportWidth)}
}

// Valid reports whether the viewport has a usable area.
func (v Viewport) Valid() bool {
	return v.Size.Width > 0 && v.Size.Height > 0
}
