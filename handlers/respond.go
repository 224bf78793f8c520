package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"osonaiAPI/internal/generation"
	"osonaiAPI/internal/imagesource"
	"osonaiAPI/internal/interaction"
	"osonaiAPI/internal/render"
	"osonaiAPI/internal/scene"
	"osonaiAPI/services"
)

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, scene.ErrLayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrGenerationInProgress), errors.Is(err, interaction.ErrGestureActive):
		return http.StatusConflict
	case errors.Is(err, imagesource.ErrInvalidUpload), errors.Is(err, render.ErrExportFailed):
		return http.StatusUnprocessableEntity
	case generation.IsContentPolicy(err):
		return http.StatusBadRequest
	case errors.Is(err, generation.ErrGenerationFailed), errors.Is(err, imagesource.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, scene.ErrInvalidAspectRatio),
		errors.Is(err, scene.ErrInvalidStyle),
		errors.Is(err, scene.ErrInvalidBackground),
		errors.Is(err, scene.ErrInvalidViewport),
		errors.Is(err, imagesource.ErrEmptySource),
		errors.Is(err, generation.ErrPromptRequired),
		errors.Is(err, services.ErrNoPrompt):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithDomainError writes err with its mapped status. Messages of
// unexpected errors are not leaked.
func respondWithDomainError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		respondWithError(w, code, "Internal server error")
		return
	}
	if errors.Is(err, services.ErrNoPrompt) {
		respondWithError(w, code, "No prompt available. Please generate a post first.")
		return
	}
	respondWithError(w, code, err.Error())
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "Endpoint not found")
}
