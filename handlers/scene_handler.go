package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/scene"
	"osonaiAPI/internal/selection"
	"osonaiAPI/internal/types/canvas"
	"osonaiAPI/services"
)

// multipartOverhead is room for the form framing around the uploaded file.
const multipartOverhead = 1 << 20

type SceneHandler struct {
	sceneService   *services.SceneService
	exportService  *services.ExportService
	uploadMaxBytes int64
}

func NewSceneHandler(sceneService *services.SceneService, exportService *services.ExportService, uploadMaxBytes int64) *SceneHandler {
	if uploadMaxBytes <= 0 {
		uploadMaxBytes = imagesource.DefaultMaxUploadBytes
	}
	return &SceneHandler{
		sceneService:   sceneService,
		exportService:  exportService,
		uploadMaxBytes: uploadMaxBytes,
	}
}

func (h *SceneHandler) CreateScene(w http.ResponseWriter, r *http.Request) {
	var req services.CreateSceneRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	view, err := h.sceneService.Create(req)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, view)
}

func (h *SceneHandler) GetScene(w http.ResponseWriter, r *http.Request) {
	view, err := h.sceneService.Get(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (h *SceneHandler) DeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := h.sceneService.Delete(mux.Vars(r)["id"]); err != nil {
		respondWithDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SceneHandler) ResetScene(w http.ResponseWriter, r *http.Request) {
	h.respondView(w)(h.sceneService.Reset(mux.Vars(r)["id"]))
}

func (h *SceneHandler) SetAspectRatio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AspectRatio string `json:"aspectRatio"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.respondView(w)(h.sceneService.SetAspectRatio(mux.Vars(r)["id"], req.AspectRatio))
}

func (h *SceneHandler) SetViewport(w http.ResponseWriter, r *http.Request) {
	var req canvas.ViewportView
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.respondView(w)(h.sceneService.SetViewport(mux.Vars(r)["id"], req))
}

func (h *SceneHandler) SetText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	vars := mux.Vars(r)
	h.respondView(w)(h.sceneService.SetText(vars["id"], vars["role"], req.Text))
}

func (h *SceneHandler) SetFrame(w http.ResponseWriter, r *http.Request) {
	var req services.FrameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	vars := mux.Vars(r)
	h.respondView(w)(h.sceneService.SetFrame(vars["id"], vars["layerID"], req))
}

func (h *SceneHandler) AddOverlay(w http.ResponseWriter, r *http.Request) {
	file, contentType, ok := h.formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	view, overlayID, err := h.sceneService.AddOverlay(mux.Vars(r)["id"], file, contentType)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"overlayId": overlayID,
		"scene":     view,
	})
}

func (h *SceneHandler) RemoveOverlay(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.respondView(w)(h.sceneService.RemoveOverlay(vars["id"], vars["overlayID"]))
}

func (h *SceneHandler) BringToFront(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	h.respondView(w)(h.sceneService.BringToFront(vars["id"], vars["overlayID"]))
}

func (h *SceneHandler) SetOverlayVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hidden bool `json:"hidden"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	vars := mux.Vars(r)
	h.respondView(w)(h.sceneService.SetOverlayHidden(vars["id"], vars["overlayID"], req.Hidden))
}

func (h *SceneHandler) SetBackground(w http.ResponseWriter, r *http.Request) {
	file, contentType, ok := h.formImage(w, r)
	if !ok {
		return
	}
	defer file.Close()

	h.respondView(w)(h.sceneService.SetBackgroundUpload(mux.Vars(r)["id"], file, contentType))
}

func (h *SceneHandler) UpdateBackground(w http.ResponseWriter, r *http.Request) {
	var req scene.BackgroundSettings
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.respondView(w)(h.sceneService.UpdateBackground(mux.Vars(r)["id"], req))
}

func (h *SceneHandler) ClearBackground(w http.ResponseWriter, r *http.Request) {
	h.respondView(w)(h.sceneService.ClearBackground(mux.Vars(r)["id"]))
}

func (h *SceneHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	h.respondPanel(w)(h.sceneService.Panel(mux.Vars(r)["id"]))
}

func (h *SceneHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LayerID string `json:"layerId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.respondPanel(w)(h.sceneService.Select(mux.Vars(r)["id"], req.LayerID))
}

func (h *SceneHandler) Deselect(w http.ResponseWriter, r *http.Request) {
	h.respondPanel(w)(h.sceneService.Deselect(mux.Vars(r)["id"]))
}

func (h *SceneHandler) ApplyStyle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Property scene.StyleProperty `json:"property"`
		Value    string              `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	panel, applied, err := h.sceneService.ApplyStyle(mux.Vars(r)["id"], req.Property, req.Value)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"applied": applied,
		"panel":   panel,
	})
}

func (h *SceneHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	out, err := h.exportService.Export(ctx, id, r.URL.Query().Get("format"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	for _, warning := range out.Warnings {
		log.Printf("[Render %s] %s", id, warning)
	}

	w.Header().Set("Content-Type", out.Format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Format.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("X-Export-Skipped", strconv.Itoa(len(out.Warnings)))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

func (h *SceneHandler) Caption(w http.ResponseWriter, r *http.Request) {
	c, err := h.exportService.Caption(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

// formImage pulls the "image" file out of a multipart form.
func (h *SceneHandler) formImage(w http.ResponseWriter, r *http.Request) (file multipart.File, contentType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.uploadMaxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Maximum size is %dMB.", h.uploadMaxBytes/(1024*1024)))
			return nil, "", false
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, "", false
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "image file is required")
		return nil, "", false
	}
	return f, header.Header.Get("Content-Type"), true
}

func (h *SceneHandler) respondView(w http.ResponseWriter) func(canvas.SceneView, error) {
	return func(view canvas.SceneView, err error) {
		if err != nil {
			respondWithDomainError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, view)
	}
}

func (h *SceneHandler) respondPanel(w http.ResponseWriter) func(p selection.Panel, err error) {
	return func(p selection.Panel, err error) {
		if err != nil {
			respondWithDomainError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, p)
	}
}
