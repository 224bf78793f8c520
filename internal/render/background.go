package render

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"osonaiAPI/internal/geometry"
	"osonaiAPI/internal/scene"
)

// backgroundRect places the background image in export pixels following
// its fit, scale percentage and anchor. The result may extend past the
// target; drawing clips it.
func backgroundRect(target image.Rectangle, imgSize image.Point, bg *scene.Background, sx, sy float64) geometry.Rect {
	tw, th := float64(target.Dx()), float64(target.Dy())
	iw, ih := float64(imgSize.X), float64(imgSize.Y)

	var w, h float64
	switch bg.Fit {
	case scene.FitCover:
		k := math.Max(tw/iw, th/ih)
		w, h = iw*k, ih*k
	case scene.FitContain:
		k := math.Min(tw/iw, th/ih)
		w, h = iw*k, ih*k
	case scene.FitNone:
		// natural on-screen size
		w, h = iw*sx, ih*sy
	default:
		w, h = tw, th
	}

	scale := bg.Scale
	if scale <= 0 {
		scale = 100
	}
	w, h = w*scale/100, h*scale/100

	left, top := (tw-w)/2, (th-h)/2
	switch bg.Position {
	case scene.PositionTop:
		top = 0
	case scene.PositionBottom:
		top = th - h
	case scene.PositionLeft:
		left = 0
	case scene.PositionRight:
		left = tw - w
	}
	return geometry.NewRect(float64(target.Min.X)+left, float64(target.Min.Y)+top, w, h)
}

func drawBackground(dst *image.RGBA, img image.Image, bg *scene.Background, sx, sy float64) {
	size := img.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return
	}
	drawStretched(dst, img, backgroundRect(dst.Bounds(), size, bg, sx, sy))
}

// drawStretched scales img to exactly fill box.
func drawStretched(dst *image.RGBA, img image.Image, box geometry.Rect) {
	r := pixelRect(box.Left, box.Top, box.Width, box.Height)
	if r.Empty() || img.Bounds().Empty() {
		return
	}
	xdraw.CatmullRom.Scale(dst, r, img, img.Bounds(), draw.Over, nil)
}
