// Package departures picks which departures of a monitor are worth speaking
package departures

import (
	"errors"
	"fmt"
	"sort"

	"github.com/randytsao24/mytramstation/internal/models"
	"github.com/randytsao24/mytramstation/internal/transit"
)

// ErrNoData means the monitor decoded fine but has nothing to select from
var ErrNoData = errors.New("no departure data")

// candidate is a departure together with the line it belongs to
type candidate struct {
	dep  transit.Departure
	line *transit.Line
}

// SingleLine selects departures of the first line of the first monitor.
// Each tram stop serves exactly one line in one direction, so the rest of
// the snapshot is ignored.
func SingleLine(resp *transit.MonitorResponse, policy models.SelectionPolicy) ([]models.SelectedDeparture, error) {
	if resp == nil || len(resp.Data.Monitors) == 0 {
		return nil, fmt.Errorf("%w: no monitors in response", ErrNoData)
	}
	lines := resp.Data.Monitors[0].Lines
	if len(lines) == 0 || len(lines[0].Departures.Departure) == 0 {
		return nil, fmt.Errorf("%w: first monitor has no departures", ErrNoData)
	}

	deps := lines[0].Departures.Departure
	countdowns := make([]int, len(deps))
	for i, d := range deps {
		countdowns[i] = d.DepartureTime.Countdown
	}

	taken := deps[:Cut(countdowns, policy)]
	selected := make([]models.SelectedDeparture, len(taken))
	for i, d := range taken {
		selected[i] = models.SelectedDeparture{
			CountdownMinutes: d.DepartureTime.Countdown,
			IsLate:           d.DepartureTime.IsLate(),
		}
	}
	return selected, nil
}

// GroupedByLine selects from the departures of every line of every monitor,
// earliest first, tagging each with its line name and destination.
func GroupedByLine(resp *transit.MonitorResponse, policy models.SelectionPolicy) ([]models.SelectedDeparture, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: no monitors in response", ErrNoData)
	}

	var candidates []candidate
	hasLine := false
	for i := range resp.Data.Monitors {
		lines := resp.Data.Monitors[i].Lines
		for j := range lines {
			hasLine = true
			for _, d := range lines[j].Departures.Departure {
				candidates = append(candidates, candidate{dep: d, line: &lines[j]})
			}
		}
	}
	if !hasLine {
		return nil, fmt.Errorf("%w: no lines in any monitor", ErrNoData)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no line has departures", ErrNoData)
	}

	// Upstream orders departures per line only
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dep.DepartureTime.Countdown < candidates[j].dep.DepartureTime.Countdown
	})

	countdowns := make([]int, len(candidates))
	for i, c := range candidates {
		countdowns[i] = c.dep.DepartureTime.Countdown
	}

	taken := candidates[:Cut(countdowns, policy)]
	selected := make([]models.SelectedDeparture, len(taken))
	for i, c := range taken {
		selected[i] = models.SelectedDeparture{
			CountdownMinutes: c.dep.DepartureTime.Countdown,
			IsLate:           c.dep.DepartureTime.IsLate(),
			LineName:         c.line.Name,
			Towards:          c.line.Towards,
		}
	}
	return selected, nil
}

// Cut returns how many leading countdowns the policy keeps. A countdown is
// kept while it is within the interval or fewer than MinimumCount have been
// kept; the first one failing both ends the selection.
func Cut(countdowns []int, policy models.SelectionPolicy) int {
	remaining := policy.MinimumCount
	for i, c := range countdowns {
		if c > policy.IntervalMinutes && remaining <= 0 {
			return i
		}
		remaining--
	}
	return len(countdowns)
}

// Select applies the policy to an already ordered list of selected departures
func Select(deps []models.SelectedDeparture, policy models.SelectionPolicy) []models.SelectedDeparture {
	countdowns := make([]int, len(deps))
	for i, d := range deps {
		countdowns[i] = d.CountdownMinutes
	}
	return deps[:Cut(countdowns, policy)]
}
