// Package imagesource resolves the logical image sources a scene refers to
// (remote URLs and embedded uploads) into decoded rasters.
package imagesource

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidUpload = errors.New("invalid upload")
	ErrFetch         = errors.New("image fetch failed")
	ErrEmptySource   = errors.New("empty image source")
	ErrTooManyPixels = errors.New("image dimensions too large")
)

// DefaultMaxPixels bounds width*height of any raster that gets decoded.
const DefaultMaxPixels = 40_000_000

// Source references a raster either by URL or by bytes captured at upload
// time. Embedded sources are never re-fetched.
type Source struct {
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Data     []byte `json:"-"`
}

// FromURL wraps a remote URL. data: URLs are decoded into an embedded source.
func FromURL(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, ErrEmptySource
	}
	if strings.HasPrefix(raw, "data:") {
		return FromDataURL(raw)
	}
	return Source{URL: raw}, nil
}

// FromDataURL decodes a base64 data URL.
func FromDataURL(raw string) (Source, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return Source{}, fmt.Errorf("%w: malformed data url", ErrInvalidUpload)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	return Source{MimeType: strings.TrimSuffix(header, ";base64"), Data: data}, nil
}

// IsZero reports whether the source points nowhere.
func (s Source) IsZero() bool {
	return s.URL == "" && len(s.Data) == 0
}

// Embedded reports whether the raster bytes are held in memory.
func (s Source) Embedded() bool {
	return len(s.Data) > 0
}

// DataURL renders an embedded source as a data URL for the browser.
func (s Source) DataURL() string {
	if !s.Embedded() {
		return s.URL
	}
	return "data:" + s.MimeType + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}

// String is a short description used in log lines and warnings.
func (s Source) String() string {
	if s.Embedded() {
		return fmt.Sprintf("embedded %s (%d bytes)", s.MimeType, len(s.Data))
	}
	return s.URL
}

// checkDimensions reads only the image header and rejects rasters whose
// full decode would exceed maxPixels.
func checkDimensions(data []byte, maxPixels int) (string, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}
	return format, nil
}

func decode(data []byte, maxPixels int) (image.Image, error) {
	if _, err := checkDimensions(data, maxPixels); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
