package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "campusnav",
		"description": "Campus navigation and routing service",
		"version":     "1.0.0",
		"endpoints": map[string]string{
			"GET /health":                     "Health check",
			"GET /nav/buildings":              "Building catalog, optional ?campus= filter",
			"GET /nav/buildings/{abbr}/rooms": "A building's rooms and points of interest",
			"GET /nav/resolve":                "Resolve a room code, ?code=H-531",
			"POST /nav/route":                 "Route between two locations",
			"POST /nav/route/current":         "Route from the device position",
			"POST /nav/position":              "Report a device position",
			"GET /nav/state":                  "Current map display state",
			"POST /nav/campus":                "Select the active campus",
			"POST /nav/accessibility":         "Toggle accessible indoor paths",
			"GET /nav/shuttle/stops":          "Shuttle stop list",
			"GET /nav/shuttle/next":           "Next shuttle departure, ?from=&to=",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check the /api endpoint for available routes",
	})
}
