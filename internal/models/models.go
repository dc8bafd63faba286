// Package models defines shared data types
package models

import "strings"

// Mode selects which kind of stop a query is about
type Mode int

const (
	Tram Mode = iota
	Bus
)

// ParseMode maps "tram" or "bus" (any case) to a Mode
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "tram":
		return Tram, true
	case "bus":
		return Bus, true
	}
	return Tram, false
}

func (m Mode) String() string {
	if m == Bus {
		return "bus"
	}
	return "tram"
}

// StopSelector is what the voice layer extracted from the user's request.
// Hint is free text and only ever matched as a case-insensitive prefix.
type StopSelector struct {
	Mode Mode   `json:"mode"`
	Hint string `json:"hint"`
}

// Stop is one of the fixed monitor stops
type Stop struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// SelectionPolicy decides how many departures are surfaced: everything within
// IntervalMinutes, and never fewer than MinimumCount if that many exist.
type SelectionPolicy struct {
	IntervalMinutes int `json:"interval_minutes"`
	MinimumCount    int `json:"minimum_count"`
}

// SelectedDeparture is a departure picked for speaking.
// LineName and Towards are only set in grouped-by-line mode.
type SelectedDeparture struct {
	CountdownMinutes int    `json:"countdown_minutes"`
	IsLate           bool   `json:"is_late"`
	LineName         string `json:"line_name,omitempty"`
	Towards          string `json:"towards,omitempty"`
}

// MarshalText renders the mode as "tram" or "bus"
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
