package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"osonaiAPI/internal/generation"
	"osonaiAPI/internal/scene"
	"osonaiAPI/services"
)

type GenerationHandler struct {
	generationService *services.GenerationService
	timeout           time.Duration
}

func NewGenerationHandler(generationService *services.GenerationService, timeout time.Duration) *GenerationHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GenerationHandler{generationService: generationService, timeout: timeout}
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
}

func (h *GenerationHandler) decode(w http.ResponseWriter, r *http.Request) (generateRequest, scene.AspectRatio, bool) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return req, "", false
	}
	aspect, err := scene.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		respondWithDomainError(w, err)
		return req, "", false
	}
	return req, aspect, true
}

// providerFailure answers a direct generation call that failed upstream.
func providerFailure(w http.ResponseWriter, message string, err error) {
	if !generation.IsContentPolicy(err) && statusFor(err) != http.StatusBadGateway {
		respondWithDomainError(w, err)
		return
	}
	log.Printf("%s: %v", message, err)
	respondWithJSON(w, statusFor(err), map[string]string{
		"error":   message,
		"details": err.Error(),
	})
}

func (h *GenerationHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, aspect, ok := h.decode(w, r)
	if !ok {
		return
	}
	img, err := h.generationService.Image(ctx, req.Prompt, aspect)
	if err != nil {
		providerFailure(w, "Failed to generate image", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"imageUrl":      img.URL,
		"revisedPrompt": img.RevisedPrompt,
	})
}

func (h *GenerationHandler) RegenerateImage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, aspect, ok := h.decode(w, r)
	if !ok {
		return
	}
	img, err := h.generationService.RegenerateImage(ctx, req.Prompt, aspect)
	if err != nil {
		providerFailure(w, "Failed to regenerate image", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"imageUrl":      img.URL,
		"revisedPrompt": img.RevisedPrompt,
	})
}

func (h *GenerationHandler) GenerateText(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, _, ok := h.decode(w, r)
	if !ok {
		return
	}
	content, err := h.generationService.Text(ctx, req.Prompt)
	if err != nil {
		providerFailure(w, "Failed to generate text content", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"title":    content.Title,
		"subtitle": content.Subtitle,
		"caption":  content.Caption,
		"hashtags": content.Hashtags,
	})
}

func (h *GenerationHandler) GeneratePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.generationService.GeneratePost(ctx, mux.Vars(r)["id"], req.Prompt)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *GenerationHandler) RegeneratePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.generationService.RegeneratePost(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (h *GenerationHandler) RegenerateSceneImage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.generationService.RegenerateSceneImage(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}
