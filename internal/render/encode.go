package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"osonaiAPI/internal/scene"
)

// Format is an export encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// jpegQuality matches a 0.9 browser quality setting.
const jpegQuality = 90

// ParseFormat accepts png, jpg and jpeg. An empty string means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("%w: unsupported format %q", ErrExportFailed, s)
}

func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// FileName is the suggested download name.
func (f Format) FileName() string {
	return "post." + string(f)
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("%w: no raster data", ErrExportFailed)
	}
	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return fmt.Errorf("%w: unsupported format %q", ErrExportFailed, f)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// Export flattens s and encodes it. Warnings list skipped layers.
func (r *Renderer) Export(ctx context.Context, s *scene.Scene, f Format) ([]byte, []Warning, error) {
	res, err := r.Flatten(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, res.Image, f); err != nil {
		return nil, res.Warnings, err
	}
	if buf.Len() == 0 {
		return nil, res.Warnings, fmt.Errorf("%w: encoder produced no data", ErrExportFailed)
	}
	return buf.Bytes(), res.Warnings, nil
}
