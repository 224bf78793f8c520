package handlers

import (
	"github.com/gorilla/mux"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Scenes     *SceneHandler
	Generation *GenerationHandler
	Gestures   *GestureHandler
	Proxy      *ProxyHandler
}

// RegisterGestureRoutes mounts the websocket stream. It goes on the root
// router so no middleware wraps the hijacked connection.
func RegisterGestureRoutes(r *mux.Router, h Handlers) {
	r.HandleFunc("/api/v1/scenes/{id}/gestures", h.Gestures.StreamGestures).Methods("GET")
}

// RegisterRoutes mounts the REST surface on a router that already carries
// the standard middleware.
func RegisterRoutes(r *mux.Router, h Handlers) {
	r.HandleFunc("/api/health", HealthCheck).Methods("GET")
	r.HandleFunc("/api/proxy-image", h.Proxy.ProxyImage).Methods("GET")
	r.HandleFunc("/api/generate-image", h.Generation.GenerateImage).Methods("POST")
	r.HandleFunc("/api/generate-text", h.Generation.GenerateText).Methods("POST")
	r.HandleFunc("/api/regenerate-image", h.Generation.RegenerateImage).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()

	s := h.Scenes
	api.HandleFunc("/scenes", s.CreateScene).Methods("POST")
	api.HandleFunc("/scenes/{id}", s.GetScene).Methods("GET")
	api.HandleFunc("/scenes/{id}", s.DeleteScene).Methods("DELETE")
	api.HandleFunc("/scenes/{id}/reset", s.ResetScene).Methods("POST")
	api.HandleFunc("/scenes/{id}/aspect-ratio", s.SetAspectRatio).Methods("PUT")
	api.HandleFunc("/scenes/{id}/viewport", s.SetViewport).Methods("PUT")
	api.HandleFunc("/scenes/{id}/text/{role}", s.SetText).Methods("PUT")
	api.HandleFunc("/scenes/{id}/layers/{layerID}/frame", s.SetFrame).Methods("PUT")

	api.HandleFunc("/scenes/{id}/overlays", s.AddOverlay).Methods("POST")
	api.HandleFunc("/scenes/{id}/overlays/{overlayID}", s.RemoveOverlay).Methods("DELETE")
	api.HandleFunc("/scenes/{id}/overlays/{overlayID}/front", s.BringToFront).Methods("POST")
	api.HandleFunc("/scenes/{id}/overlays/{overlayID}/visibility", s.SetOverlayVisibility).Methods("PUT")

	api.HandleFunc("/scenes/{id}/background", s.SetBackground).Methods("POST")
	api.HandleFunc("/scenes/{id}/background/settings", s.UpdateBackground).Methods("PUT")
	api.HandleFunc("/scenes/{id}/background", s.ClearBackground).Methods("DELETE")

	api.HandleFunc("/scenes/{id}/selection", s.GetSelection).Methods("GET")
	api.HandleFunc("/scenes/{id}/selection", s.Select).Methods("POST")
	api.HandleFunc("/scenes/{id}/selection", s.Deselect).Methods("DELETE")
	api.HandleFunc("/scenes/{id}/style", s.ApplyStyle).Methods("PUT")

	api.HandleFunc("/scenes/{id}/export", s.Export).Methods("GET")
	api.HandleFunc("/scenes/{id}/caption", s.Caption).Methods("GET")

	g := h.Generation
	api.HandleFunc("/scenes/{id}/generate", g.GeneratePost).Methods("POST")
	api.HandleFunc("/scenes/{id}/regenerate", g.RegeneratePost).Methods("POST")
	api.HandleFunc("/scenes/{id}/regenerate-image", g.RegenerateSceneImage).Methods("POST")
}
