package imagesource

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxRemoteBytes bounds how much a single remote image may weigh.
const maxRemoteBytes = 25 * 1024 * 1024

// Fetcher turns a logical source into a displayable image.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) (image.Image, error)
}

// DirectFetcher downloads remote URLs itself.
type DirectFetcher struct {
	client    *http.Client
	maxPixels int
}

// NewDirectFetcher creates a DirectFetcher with the given request timeout.
func NewDirectFetcher(timeout time.Duration) *DirectFetcher {
	return &DirectFetcher{client: &http.Client{Timeout: timeout}, maxPixels: DefaultMaxPixels}
}

func (f *DirectFetcher) Fetch(ctx context.Context, src Source) (image.Image, error) {
	if src.Embedded() {
		return decode(src.Data, f.maxPixels)
	}
	if src.URL == "" {
		return nil, ErrEmptySource
	}
	data, _, err := f.Download(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	return decode(data, f.maxPixels)
}

// Download fetches raw bytes and the upstream content type of an http(s) URL.
func (f *DirectFetcher) Download(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", fmt.Errorf("%w: unsupported url %q", ErrFetch, rawURL)
	}
	return get(ctx, f.client, u.String())
}

// RelayFetcher routes remote URLs through a same-origin relay that re-serves
// the bytes, for deployments where the image host blocks direct access.
type RelayFetcher struct {
	relayURL  string
	client    *http.Client
	maxPixels int
}

// NewRelayFetcher creates a RelayFetcher using relayURL?url=<target>.
func NewRelayFetcher(relayURL string, timeout time.Duration) *RelayFetcher {
	return &RelayFetcher{relayURL: relayURL, client: &http.Client{Timeout: timeout}, maxPixels: DefaultMaxPixels}
}

func (f *RelayFetcher) Fetch(ctx context.Context, src Source) (image.Image, error) {
	if src.Embedded() {
		return decode(src.Data, f.maxPixels)
	}
	if src.URL == "" {
		return nil, ErrEmptySource
	}
	sep := "?"
	if strings.Contains(f.relayURL, "?") {
		sep = "&"
	}
	data, _, err := get(ctx, f.client, f.relayURL+sep+"url="+url.QueryEscape(src.URL))
	if err != nil {
		return nil, err
	}
	return decode(data, f.maxPixels)
}

// NewFetcher picks the relayed implementation when a relay is configured.
// Rasters larger than maxPixels fail to decode; zero keeps the default.
func NewFetcher(relayURL string, timeout time.Duration, maxPixels int) Fetcher {
	if relayURL != "" {
		f := NewRelayFetcher(relayURL, timeout)
		f.SetMaxPixels(maxPixels)
		return f
	}
	f := NewDirectFetcher(timeout)
	f.SetMaxPixels(maxPixels)
	return f
}

func (f *DirectFetcher) SetMaxPixels(n int) {
	if n > 0 {
		f.maxPixels = n
	}
}

func (f *RelayFetcher) SetMaxPixels(n int) {
	if n > 0 {
		f.maxPixels = n
	}
}

func get(ctx context.Context, client *http.Client, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: upstream returned %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if len(data) > maxRemoteBytes {
		return nil, "", fmt.Errorf("%w: image too large, maximum size is %dMB", ErrFetch, maxRemoteBytes/(1024*1024))
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
