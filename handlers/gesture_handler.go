package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"osonaiAPI/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type GestureHandler struct {
	manager *services.SceneManager
}

func NewGestureHandler(manager *services.SceneManager) *GestureHandler {
	return &GestureHandler{manager: manager}
}

// StreamGestures upgrades to a websocket carrying pointer events for one
// scene. Events are applied in the order they arrive.
func (h *GestureHandler) StreamGestures(w http.ResponseWriter, r *http.Request) {
	sess, err := h.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Could not upgrade connection: %v", err)
		return
	}

	client := services.NewGestureClient(sess, conn)
	go client.WritePump()
	go client.ReadPump()
}
