package handlers

import (
	"log/slog"
	"net/http"

	"github.com/randytsao24/mytramstation/internal/models"
	"github.com/randytsao24/mytramstation/internal/speech"
)

const (
	maxIntervalMinutes = 120
	maxMinimumCount    = 20
)

type DeparturesHandler struct {
	departures DepartureProvider
	policy     models.SelectionPolicy
}

func NewDeparturesHandler(departures DepartureProvider, policy models.SelectionPolicy) *DeparturesHandler {
	return &DeparturesHandler{
		departures: departures,
		policy:     policy,
	}
}

// Speak returns the spoken answer for a stop. Failures are answered with the
// fallback phrase and status 200 so the voice layer always has something to say.
func (h *DeparturesHandler) Speak(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selector(w, r)
	if !ok {
		return
	}

	policy := h.parsePolicy(r)
	text := h.departures.Query(r.Context(), sel, policy)

	writeJSON(w, http.StatusOK, map[string]any{
		"speech": text,
		"stop":   h.departures.Resolve(sel),
		"mode":   sel.Mode,
	})
}

// List returns the selected departures as data
func (h *DeparturesHandler) List(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selector(w, r)
	if !ok {
		return
	}

	result, err := h.departures.Departures(r.Context(), sel, h.parsePolicy(r))
	if err != nil {
		slog.Error("listing departures", "mode", sel.Mode.String(), "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   speech.RequestFailed,
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"stop":       result.Stop,
		"speech":     result.Speech,
		"departures": result.Departures,
		"count":      len(result.Departures),
	})
}

// Alerts returns the stop's traffic information as a GTFS-Realtime feed
func (h *DeparturesHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selector(w, r)
	if !ok {
		return
	}

	buf, stop, err := h.departures.Alerts(r.Context(), sel)
	if err != nil {
		slog.Error("fetching alerts", "stop_id", stop.ID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   speech.RequestFailed,
			"message": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		slog.Error("writing alerts", "error", err)
	}
}

func (h *DeparturesHandler) selector(w http.ResponseWriter, r *http.Request) (models.StopSelector, bool) {
	mode, ok := models.ParseMode(r.PathValue("mode"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Invalid mode",
			"message": "Mode must be tram or bus",
		})
		return models.StopSelector{}, false
	}
	return models.StopSelector{Mode: mode, Hint: r.URL.Query().Get("hint")}, true
}

func (h *DeparturesHandler) parsePolicy(r *http.Request) models.SelectionPolicy {
	return models.SelectionPolicy{
		IntervalMinutes: parseIntQueryParam(r, "interval", h.policy.IntervalMinutes, 0, maxIntervalMinutes),
		MinimumCount:    parseIntQueryParam(r, "minimum", h.policy.MinimumCount, 0, maxMinimumCount),
	}
}
