// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	buildings BuildingSource
	startTime time.Time
}

func NewHealthHandler(buildings BuildingSource) *HealthHandler {
	return &HealthHandler{buildings: buildings, startTime: time.Now()}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"buildings": h.buildings.Count(),
		"uptime":    time.Since(h.startTime).String(),
	})
}
