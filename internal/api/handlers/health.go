// Package handlers contains HTTP request handlers
package handlers

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	startTime time.Time
	env       string
}

func NewHealthHandler(env string) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), env: env}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"env":       h.env,
		"uptime":    time.Since(h.startTime).String(),
	})
}
