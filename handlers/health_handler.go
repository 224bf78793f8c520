package handlers

import (
	"net/http"
	"time"
)

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "osonai",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
