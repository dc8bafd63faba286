// Package assistant answers departure questions with speakable text
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randytsao24/mytramstation/internal/departures"
	"github.com/randytsao24/mytramstation/internal/location"
	"github.com/randytsao24/mytramstation/internal/models"
	"github.com/randytsao24/mytramstation/internal/speech"
	"github.com/randytsao24/mytramstation/internal/transit"
)

// MonitorProvider abstracts the monitor data source for testability.
type MonitorProvider interface {
	GetMonitor(ctx context.Context, stopID int) (*transit.MonitorResponse, error)
}

// Acknowledger speaks an interim message while a query is running
type Acknowledger func(ctx context.Context, text string) error

// strategy pairs the selection and the rendering used for one mode
type strategy struct {
	selectDepartures func(*transit.MonitorResponse, models.SelectionPolicy) ([]models.SelectedDeparture, error)
	render           func([]models.SelectedDeparture) string
}

var strategies = map[models.Mode]strategy{
	models.Tram: {selectDepartures: departures.SingleLine, render: speech.SingleLine},
	models.Bus:  {selectDepartures: departures.GroupedByLine, render: speech.GroupedByLine},
}

// Result is a successful answer
type Result struct {
	Stop       models.Stop                `json:"stop"`
	Departures []models.SelectedDeparture `json:"departures"`
	Speech     string                     `json:"speech"`
}

// Service resolves the stop, fetches its monitor, selects and renders departures.
// It holds no per-query state and is safe for concurrent use.
type Service struct {
	registry *location.Registry
	monitors MonitorProvider
}

// NewService creates a new assistant service
func NewService(registry *location.Registry, monitors MonitorProvider) *Service {
	return &Service{
		registry: registry,
		monitors: monitors,
	}
}

// Resolve returns the stop a selector refers to
func (s *Service) Resolve(sel models.StopSelector) models.Stop {
	return s.registry.Resolve(sel)
}

// Stops lists the fixed stops
func (s *Service) Stops() []models.Stop {
	return s.registry.All()
}

// Departures runs the full pipeline and returns the typed result. Errors are
// *transit.NetworkError, departures.ErrNoData or a recovered panic.
func (s *Service) Departures(ctx context.Context, sel models.StopSelector, policy models.SelectionPolicy) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("query panicked: %v", r)
		}
	}()

	strat, ok := strategies[sel.Mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode %d", sel.Mode)
	}

	stop := s.registry.Resolve(sel)
	resp, err := s.monitors.GetMonitor(ctx, stop.ID)
	if err != nil {
		return nil, err
	}

	selected, err := strat.selectDepartures(resp, policy)
	if err != nil {
		return nil, fmt.Errorf("stop %d: %w", stop.ID, err)
	}

	return &Result{
		Stop:       stop,
		Departures: selected,
		Speech:     strat.render(selected),
	}, nil
}

// Query answers with speakable text and never returns an error: any failure
// becomes "Failed to execute a request".
func (s *Service) Query(ctx context.Context, sel models.StopSelector, policy models.SelectionPolicy) string {
	start := time.Now()
	result, err := s.Departures(ctx, sel, policy)
	if err != nil {
		slog.Error("departure query failed",
			"mode", sel.Mode.String(),
			"hint", sel.Hint,
			"error", err,
		)
		return speech.RequestFailed
	}

	slog.Info("departure query",
		"mode", sel.Mode.String(),
		"stop_id", result.Stop.ID,
		"count", len(result.Departures),
		"duration", time.Since(start).String(),
	)
	return result.Speech
}

// QueryWithAck runs ack concurrently with Query and waits for both.
// A failing ack is logged and does not change the answer.
func (s *Service) QueryWithAck(ctx context.Context, sel models.StopSelector, policy models.SelectionPolicy, ack Acknowledger) string {
	var wg sync.WaitGroup
	if ack != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("acknowledgment panicked", "error", r)
				}
			}()
			if err := ack(ctx, speech.Acknowledgment(sel.Hint)); err != nil {
				slog.Warn("acknowledgment failed", "error", err)
			}
		}()
	}

	text := s.Query(ctx, sel, policy)
	wg.Wait()
	return text
}

// Alerts returns the traffic information of the selected stop as a
// GTFS-Realtime protobuf feed
func (s *Service) Alerts(ctx context.Context, sel models.StopSelector) ([]byte, models.Stop, error) {
	stop := s.registry.Resolve(sel)
	resp, err := s.monitors.GetMonitor(ctx, stop.ID)
	if err != nil {
		return nil, stop, err
	}

	buf, err := transit.MarshalAlertFeed(resp, time.Now())
	if err != nil {
		return nil, stop, fmt.Errorf("encoding alerts: %w", err)
	}
	return buf, stop, nil
}
