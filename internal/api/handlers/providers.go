package handlers

import (
	"context"

	"github.com/randytsao24/mytramstation/internal/assistant"
	"github.com/randytsao24/mytramstation/internal/models"
)

// DepartureProvider abstracts the assistant service for testability.
type DepartureProvider interface {
	Resolve(sel models.StopSelector) models.Stop
	Stops() []models.Stop
	Query(ctx context.Context, sel models.StopSelector, policy models.SelectionPolicy) string
	Departures(ctx context.Context, sel models.StopSelector, policy models.SelectionPolicy) (*assistant.Result, error)
	Alerts(ctx context.Context, sel models.StopSelector) ([]byte, models.Stop, error)
}
