package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Downloader fetches the raw bytes behind an image URL.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, string, error)
}

type ProxyHandler struct {
	downloader Downloader
}

func NewProxyHandler(downloader Downloader) *ProxyHandler {
	return &ProxyHandler{downloader: downloader}
}

// ProxyImage re-serves a remote image from this origin so the browser can
// read its pixels.
func (h *ProxyHandler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	target := r.URL.Query().Get("url")
	if target == "" {
		respondWithError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	data, contentType, err := h.downloader.Download(ctx, target)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, err.Error())
		return
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
