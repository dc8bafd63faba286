package handlers

import (
	"net/http"

	"github.com/randytsao24/mytramstation/internal/models"
)

type RootHandler struct {
	stops []models.Stop
}

func NewRootHandler(stops []models.Stop) *RootHandler {
	return &RootHandler{stops: stops}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "mytramstation",
		"description": "Next tram and bus departures in Vienna, ready to be spoken",
		"version":     "1.0.0",
		"stops":       h.stops,
		"endpoints": map[string]string{
			"GET /":                       "API information",
			"GET /health":                 "Health check",
			"GET /departures/{mode}":      "Spoken answer (mode: tram|bus, ?hint=&interval=&minimum=)",
			"GET /departures/{mode}/list": "Selected departures as data",
			"GET /alerts/{mode}":          "Traffic information as GTFS-Realtime protobuf",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check the root endpoint (/) for available routes",
	})
}
