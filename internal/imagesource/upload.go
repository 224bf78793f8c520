package imagesource

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxUploadBytes is the upload limit when none is configured.
const DefaultMaxUploadBytes = 10 * 1024 * 1024

// ReadUpload reads and validates an uploaded file. Nothing is returned unless
// the bytes are a decodable image no larger than maxBytes whose dimensions
// stay within maxPixels.
func ReadUpload(r io.Reader, declaredType string, maxBytes int64, maxPixels int) (Source, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}
	if int64(len(data)) > maxBytes {
		return Source{}, fmt.Errorf("%w: file too large, maximum size is %dMB", ErrInvalidUpload, maxBytes/(1024*1024))
	}
	return ValidateUpload(data, declaredType, maxPixels)
}

// ValidateUpload checks that data holds an image of at most maxPixels and
// returns it as an embedded source. Zero maxPixels keeps the default.
func ValidateUpload(data []byte, declaredType string, maxPixels int) (Source, error) {
	if len(data) == 0 {
		return Source{}, fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}
	if declaredType != "" && !strings.HasPrefix(declaredType, "image/") && declaredType != "application/octet-stream" {
		return Source{}, fmt.Errorf("%w: only image files are allowed", ErrInvalidUpload)
	}

	sniffed := http.DetectContentType(data)
	mimeType := declaredType
	if strings.HasPrefix(sniffed, "image/") || mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = sniffed
	}

	format, err := checkDimensions(data, maxPixels)
	if errors.Is(err, ErrTooManyPixels) {
		return Source{}, fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}
	if err != nil {
		return Source{}, fmt.Errorf("%w: only image files are allowed", ErrInvalidUpload)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/" + format
	}

	return Source{MimeType: mimeType, Data: data}, nil
}
