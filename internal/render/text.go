package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"osonaiAPI/internal/scene"
)

// lineSpacing is the distance between baselines as a multiple of font size.
const lineSpacing = 1.2

// drawText renders one text layer. Lines are top-anchored: the first
// baseline sits one font size below the scaled box top.
func (r *Renderer) drawText(dst *image.RGBA, l *scene.TextLayer, sx, sy float64) error {
	if strings.TrimSpace(l.Text) == "" {
		return nil
	}
	box := l.Frame.Scale(sx, sy)
	size := l.Style.FontSizePx * math.Min(sx, sy)

	face, err := r.fonts.Face(l.Style.FontFamily, size)
	if err != nil {
		return err
	}
	defer face.Close()

	mask := image.NewAlpha(dst.Bounds())
	d := &font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	for i, line := range strings.Split(l.Text, "\n") {
		width := float64(font.MeasureString(face, line)) / 64
		x := anchorX(box.Left, box.Width, width, l.Style.TextAlign)
		y := box.Top + size + float64(i)*size*lineSpacing
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
		d.DrawString(line)
	}

	if l.Style.Shadow {
		drawShadow(dst, mask, scaledShadow(scene.TextShadow, sx, sy))
	}
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(parseHexColor(l.Style.Color)), image.Point{}, mask, dst.Bounds().Min, draw.Over)
	return nil
}

// anchorX returns where a line of the given width starts inside the box.
func anchorX(left, boxWidth, lineWidth float64, align scene.TextAlign) float64 {
	switch align {
	case scene.AlignCenter:
		return left + boxWidth/2 - lineWidth/2
	case scene.AlignRight:
		return left + boxWidth - lineWidth
	default:
		return left
	}
}

// parseHexColor converts #rrggbb or #rgb into an opaque color, white otherwise.
func parseHexColor(hex string) color.RGBA {
	normalized, err := scene.NormalizeHexColor(hex)
	if err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(normalized, "#"), 16, 32)
	if err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
