package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"osonaiAPI/internal/scene"
)

// scaledShadow maps the on-screen shadow recipe into export pixels. Offsets
// follow the per-axis factors, the blur follows the uniform text factor.
func scaledShadow(sh scene.Shadow, sx, sy float64) scene.Shadow {
	return scene.Shadow{
		OffsetX: sh.OffsetX * sx,
		OffsetY: sh.OffsetY * sy,
		Blur:    sh.Blur * math.Min(sx, sy),
		Opacity: sh.Opacity,
	}
}

// drawShadow paints a blurred, offset black copy of mask under the text.
// The blur radius is treated like a canvas shadowBlur, i.e. twice the
// gaussian sigma.
func drawShadow(dst *image.RGBA, mask *image.Alpha, sh scene.Shadow) {
	var shape image.Image = mask
	if sigma := sh.Blur / 2; sigma > 0 {
		shape = imaging.Blur(mask, sigma)
	}

	offset := image.Pt(int(math.Round(sh.OffsetX)), int(math.Round(sh.OffsetY)))
	target := shape.Bounds().Add(offset).Intersect(dst.Bounds())
	if target.Empty() {
		return
	}
	tint := image.NewUniform(color.NRGBA{A: uint8(math.Round(sh.Opacity * 255))})
	draw.DrawMask(dst, target, tint, image.Point{}, shape, target.Min.Sub(offset), draw.Over)
}
