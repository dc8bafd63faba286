// Package speech renders selected departures as a spoken sentence
package speech

import (
	"fmt"
	"strings"

	"github.com/randytsao24/mytramstation/internal/models"
)

const (
	NoDepartures  = "No departures found"
	RequestFailed = "Failed to execute a request"

	departuresPrefix = "Next departures are in "
	separator        = ", "
)

// Minutes renders a countdown as "1 minute" or "n minutes"
func Minutes(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", n)
}

// SingleLine renders countdowns only, e.g. "Next departures are in 2 minutes, 5 minutes"
func SingleLine(deps []models.SelectedDeparture) string {
	return sentence(deps, func(d models.SelectedDeparture) string {
		return Minutes(d.CountdownMinutes)
	})
}

// GroupedByLine renders each departure with its destination,
// e.g. "Next departures are in 1 minute Reumannplatz, 4 minutes Liesing"
func GroupedByLine(deps []models.SelectedDeparture) string {
	return sentence(deps, func(d models.SelectedDeparture) string {
		return Minutes(d.CountdownMinutes) + " " + d.Towards
	})
}

// Acknowledgment is spoken while the departures are being fetched
func Acknowledgment(hint string) string {
	return "getting departures in direction of " + hint
}

func sentence(deps []models.SelectedDeparture, render func(models.SelectedDeparture) string) string {
	if len(deps) == 0 {
		return NoDepartures
	}

	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = render(d)
	}
	return departuresPrefix + strings.Join(parts, separator)
}
