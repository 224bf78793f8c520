// Package render flattens a scene into a single fixed-resolution raster.
//
// Every on-screen box is mapped into export pixels with independent x and y
// factors, while text is scaled uniformly by the smaller of the two so glyphs
// never distort.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/scene"
)

var ErrExportFailed = errors.New("export failed")

// backgroundKey indexes the background in the preloaded image set.
const backgroundKey = "background"

const (
	// maxConcurrentLoads bounds how many sources are fetched at once.
	maxConcurrentLoads  = 4
	defaultFetchTimeout = 15 * time.Second
)

// Warning is a best-effort omission: the export still succeeded.
type Warning struct {
	LayerID string `json:"layerId"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.LayerID, w.Message)
}

// Result is a flattened raster plus the layers that had to be skipped.
type Result struct {
	Image    *image.RGBA
	Warnings []Warning
}

type Renderer struct {
	fetcher imagesource.Fetcher
	fonts   *FontManager
}

// NewRenderer creates a Renderer. A nil fetcher downloads directly and a
// nil font manager uses the bundled Go fonts.
func NewRenderer(fetcher imagesource.Fetcher, fonts *FontManager) *Renderer {
	if fetcher == nil {
		fetcher = imagesource.NewDirectFetcher(defaultFetchTimeout)
	}
	if fonts == nil {
		fonts = NewFontManager()
	}
	return &Renderer{fetcher: fetcher, fonts: fonts}
}

// Flatten draws s at its aspect ratio's export size. The scene is only read;
// callers sharing it with other goroutines should pass a clone.
func (r *Renderer) Flatten(ctx context.Context, s *scene.Scene) (*Result, error) {
	width, height := s.AspectRatio.ExportSize()
	canvas := s.Canvas()
	if width <= 0 || height <= 0 || canvas.Width <= 0 || canvas.Height <= 0 {
		return nil, fmt.Errorf("%w: empty raster for aspect %q", ErrExportFailed, s.AspectRatio)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	sx := float64(width) / canvas.Width
	sy := float64(height) / canvas.Height

	images, warnings := r.preload(ctx, s)

	if s.Background != nil {
		if img, ok := images[backgroundKey]; ok {
			drawBackground(dst, img, s.Background, sx, sy)
		}
	}

	for _, l := range s.TextLayers() {
		if err := r.drawText(dst, l, sx, sy); err != nil {
			warnings = append(warnings, Warning{LayerID: l.ID(), Message: err.Error()})
		}
	}

	for _, o := range s.OverlaysByZ() {
		if o.Hidden {
			continue
		}
		img, ok := images[o.ID]
		if !ok {
			continue
		}
		drawStretched(dst, img, o.Frame.Scale(sx, sy))
	}

	if dst.Bounds().Empty() {
		return nil, fmt.Errorf("%w: no raster data", ErrExportFailed)
	}
	for _, w := range warnings {
		log.Printf("[Render %s] skipped %s", s.ID, w)
	}
	return &Result{Image: dst, Warnings: warnings}, nil
}

// preload fetches the background and every visible overlay concurrently and
// waits for all of them. A failed source becomes a warning.
func (r *Renderer) preload(ctx context.Context, s *scene.Scene) (map[string]image.Image, []Warning) {
	type job struct {
		key string
		src imagesource.Source
	}
	var jobs []job
	if s.Background != nil {
		jobs = append(jobs, job{key: backgroundKey, src: s.Background.Source})
	}
	for _, o := range s.OverlaysByZ() {
		if !o.Hidden {
			jobs = append(jobs, job{key: o.ID, src: o.Source})
		}
	}

	var (
		mu     sync.Mutex
		images = make(map[string]image.Image, len(jobs))
		failed = make(map[string]error)
		g      errgroup.Group
	)
	g.SetLimit(maxConcurrentLoads)
	for _, j := range jobs {
		g.Go(func() error {
			img, err := r.load(ctx, j.src)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[j.key] = err
				return nil
			}
			images[j.key] = img
			return nil
		})
	}
	_ = g.Wait()

	var warnings []Warning
	for _, j := range jobs {
		if err, ok := failed[j.key]; ok {
			warnings = append(warnings, Warning{LayerID: j.key, Message: err.Error()})
		}
	}
	return images, warnings
}

func (r *Renderer) load(ctx context.Context, src imagesource.Source) (image.Image, error) {
	if src.IsZero() {
		return nil, imagesource.ErrEmptySource
	}
	return r.fetcher.Fetch(ctx, src)
}

// pixelRect rounds a float box to integer pixels.
func pixelRect(left, top, width, height float64) image.Rectangle {
	x0 := int(math.Round(left))
	y0 := int(math.Round(top))
	x1 := int(math.Round(left + width))
	y1 := int(math.Round(top + height))
	return image.Rect(x0, y0, x1, y1)
}
