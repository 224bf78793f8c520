package imagesource

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{200, 10, 10, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// headerOnlyPNG is a PNG whose IHDR declares w x h but carries no pixel data.
func headerOnlyPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(kind string, data []byte) {
		binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(kind), data...)
		buf.Write(body)
		binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestValidateUploadAcceptsImage(t *testing.T) {
	src, err := ValidateUpload(pngBytes(t, 4, 4), "image/png", 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", src.MimeType)
	assert.True(t, src.Embedded())
}

func TestValidateUploadRejectsNonImage(t *testing.T) {
	_, err := ValidateUpload([]byte("just some text"), "text/plain", 0)
	assert.True(t, errors.Is(err, ErrInvalidUpload))

	_, err = ValidateUpload([]byte("not really a png"), "image/png", 0)
	assert.True(t, errors.Is(err, ErrInvalidUpload))

	_, err = ValidateUpload(nil, "image/png", 0)
	assert.True(t, errors.Is(err, ErrInvalidUpload))
}

func TestReadUploadRejectsOversized(t *testing.T) {
	data := pngBytes(t, 64, 64)
	_, err := ReadUpload(bytes.NewReader(data), "image/png", int64(len(data)-1), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidUpload))
	assert.Contains(t, err.Error(), "too large")

	src, err := ReadUpload(bytes.NewReader(data), "image/png", int64(len(data)), 0)
	require.NoError(t, err)
	assert.Len(t, src.Data, len(data))
}

func TestValidateUploadRejectsHugeDimensions(t *testing.T) {
	data := headerOnlyPNG(60000, 60000)
	require.Less(t, len(data), 100)

	_, err := ValidateUpload(data, "image/png", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidUpload))
	assert.True(t, errors.Is(err, ErrTooManyPixels))

	_, err = ReadUpload(bytes.NewReader(data), "image/png", 0, 0)
	assert.True(t, errors.Is(err, ErrTooManyPixels))
}

func TestValidateUploadPixelBudget(t *testing.T) {
	_, err := ValidateUpload(pngBytes(t, 16, 16), "image/png", 100)
	assert.True(t, errors.Is(err, ErrTooManyPixels))

	_, err = ValidateUpload(pngBytes(t, 10, 10), "image/png", 100)
	assert.NoError(t, err)
}

func TestFetchRefusesHugeDimensions(t *testing.T) {
	huge := headerOnlyPNG(60000, 60000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(huge)
	}))
	defer srv.Close()

	f := NewDirectFetcher(time.Second)
	_, err := f.Fetch(context.Background(), Source{URL: srv.URL + "/huge.png"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.True(t, errors.Is(err, ErrTooManyPixels))

	_, err = f.Fetch(context.Background(), Source{MimeType: "image/png", Data: huge})
	assert.True(t, errors.Is(err, ErrTooManyPixels))

	small := NewFetcher("", time.Second, 4)
	_, err = small.Fetch(context.Background(), Source{MimeType: "image/png", Data: pngBytes(t, 3, 3)})
	assert.True(t, errors.Is(err, ErrTooManyPixels))
}

func TestDownloadRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(make([]byte, maxRemoteBytes+1))
	}))
	defer srv.Close()

	data, _, err := NewDirectFetcher(5*time.Second).Download(context.Background(), srv.URL+"/big.png")
	require.Error(t, err)
	assert.Nil(t, data)
	assert.True(t, errors.Is(err, ErrFetch))
	assert.Contains(t, err.Error(), "too large")
}

func TestDataURLRoundTrip(t *testing.T) {
	src, err := ValidateUpload(pngBytes(t, 2, 2), "image/png", 0)
	require.NoError(t, err)

	parsed, err := FromURL(src.DataURL())
	require.NoError(t, err)
	assert.Equal(t, src.Data, parsed.Data)
	assert.Equal(t, "image/png", parsed.MimeType)

	_, err = FromURL("data:image/png,rawbytes")
	assert.True(t, errors.Is(err, ErrInvalidUpload))
}

func TestDirectFetcher(t *testing.T) {
	body := pngBytes(t, 3, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	f := NewDirectFetcher(time.Second)
	img, err := f.Fetch(context.Background(), Source{URL: srv.URL + "/a.png"})
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())

	_, err = f.Fetch(context.Background(), Source{URL: srv.URL + "/missing"})
	assert.True(t, errors.Is(err, ErrFetch))

	_, err = f.Fetch(context.Background(), Source{URL: "ftp://example.com/x.png"})
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestRelayFetcherPassesTargetURL(t *testing.T) {
	body := pngBytes(t, 2, 2)
	var got string
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("url")
		w.Write(body)
	}))
	defer relay.Close()

	f := NewFetcher(relay.URL+"/api/proxy-image", time.Second, 0)
	_, ok := f.(*RelayFetcher)
	require.True(t, ok)

	_, err := f.Fetch(context.Background(), Source{URL: "https://images.example.com/p.png?sig=1"})
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/p.png?sig=1", got)
}

func TestEmbeddedSourcesAreNotFetched(t *testing.T) {
	f := NewRelayFetcher("http://127.0.0.1:1/never", time.Second)
	src, err := ValidateUpload(pngBytes(t, 2, 2), "image/png", 0)
	require.NoError(t, err)

	img, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.True(t, strings.HasPrefix(src.DataURL(), "data:image/png;base64,"))
}
