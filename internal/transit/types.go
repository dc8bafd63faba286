package transit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// lateThreshold is how far the realtime departure may trail the planned one
// before a departure counts as late
const lateThreshold = 90 * time.Second

// MonitorResponse is the decoded body of GET /monitor
type MonitorResponse struct {
	Data    MonitorData `json:"data"`
	Message Message     `json:"message"`
}

// Message is the status block the API attaches to every response
type Message struct {
	Value       string      `json:"value"`
	MessageCode json.Number `json:"messageCode"`
	ServerTime  Timestamp   `json:"serverTime"`
}

// MonitorData holds the monitors of the requested stop plus any traffic information
type MonitorData struct {
	Monitors                  []Monitor                  `json:"monitors"`
	TrafficInfoCategoryGroups []TrafficInfoCategoryGroup `json:"trafficInfoCategoryGroups,omitempty"`
	TrafficInfoCategories     []TrafficInfoCategory      `json:"trafficInfoCategories,omitempty"`
	TrafficInfos              []TrafficInfo              `json:"trafficInfos,omitempty"`
}

// Monitor is the departure board of one physical stop/platform
type Monitor struct {
	LocationStop        LocationStop    `json:"locationStop"`
	Lines               []Line          `json:"lines"`
	RefTrafficInfoNames json.RawMessage `json:"refTrafficInfoNames,omitempty"`
	Attributes          json.RawMessage `json:"attributes,omitempty"`
}

type LocationStop struct {
	Type       string             `json:"type"`
	Geometry   Geometry           `json:"geometry"`
	Properties LocationProperties `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type LocationProperties struct {
	Name           string             `json:"name"`
	Title          string             `json:"title"`
	Municipality   string             `json:"municipality"`
	MunicipalityID int                `json:"municipalityId"`
	Type           string             `json:"type"`
	CoordName      string             `json:"coordName"`
	Gate           string             `json:"gate,omitempty"`
	Attributes     LocationAttributes `json:"attributes"`
}

type LocationAttributes struct {
	RBL int `json:"rbl"`
}

// Line is one line serving a monitor, with its upcoming departures
type Line struct {
	Name              string     `json:"name"`
	Towards           string     `json:"towards"`
	Direction         string     `json:"direction"`
	Platform          string     `json:"platform"`
	RichtungsID       string     `json:"richtungsId"`
	BarrierFree       *bool      `json:"barrierFree,omitempty"`
	RealtimeSupported *bool      `json:"realtimeSupported,omitempty"`
	TrafficJam        *bool      `json:"trafficjam,omitempty"`
	Departures        Departures `json:"departures"`
	Type              string     `json:"type"`
	LineID            *int       `json:"lineId,omitempty"`
}

type Departures struct {
	Departure []Departure `json:"departure"`
}

type Departure struct {
	DepartureTime DepartureTime `json:"departureTime"`
	Vehicle       *Vehicle      `json:"vehicle,omitempty"`
}

// DepartureTime carries the countdown in minutes and the planned and realtime timestamps.
// TimeReal is nil when the API has no realtime data for the departure.
type DepartureTime struct {
	TimePlanned Timestamp  `json:"timePlanned"`
	TimeReal    *Timestamp `json:"timeReal,omitempty"`
	Countdown   int        `json:"countdown"`
}

// IsLate reports whether the realtime departure trails the planned one by more
// than 90 seconds. Missing realtime data is never late.
func (t DepartureTime) IsLate() bool {
	if t.TimeReal == nil || t.TimeReal.IsZero() || t.TimePlanned.IsZero() {
		return false
	}
	return t.TimeReal.Sub(t.TimePlanned.Time) > lateThreshold
}

// Vehicle is set when the departing vehicle differs from the line defaults
type Vehicle struct {
	Name              string          `json:"name"`
	Towards           string          `json:"towards"`
	Direction         string          `json:"direction"`
	RichtungsID       string          `json:"richtungsId"`
	BarrierFree       *bool           `json:"barrierFree,omitempty"`
	FoldingRamp       *bool           `json:"foldingRamp,omitempty"`
	RealtimeSupported *bool           `json:"realtimeSupported,omitempty"`
	TrafficJam        *bool           `json:"trafficjam,omitempty"`
	Type              string          `json:"type"`
	Attributes        json.RawMessage `json:"attributes,omitempty"`
	LinienID          *int            `json:"linienId,omitempty"`
}

type TrafficInfoCategoryGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TrafficInfoCategory struct {
	ID                            int        `json:"id"`
	RefTrafficInfoCategoryGroupID int        `json:"refTrafficInfoCategoryGroupId"`
	Name                          string     `json:"name"`
	TrafficInfoNameList           StringList `json:"trafficInfoNameList"`
	Title                         string     `json:"title"`
}

// TrafficInfo is a disruption or elevator notice attached to the response
type TrafficInfo struct {
	Name         string                 `json:"name"`
	Priority     string                 `json:"priority,omitempty"`
	Owner        string                 `json:"owner,omitempty"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	RelatedLines StringList             `json:"relatedLines,omitempty"`
	RelatedStops StringList             `json:"relatedStops,omitempty"`
	Time         *TrafficInfoTime       `json:"time,omitempty"`
	Attributes   *TrafficInfoAttributes `json:"attributes,omitempty"`
}

type TrafficInfoTime struct {
	Start  *Timestamp `json:"start,omitempty"`
	End    *Timestamp `json:"end,omitempty"`
	Resume *Timestamp `json:"resume,omitempty"`
}

type TrafficInfoAttributes struct {
	Status       string     `json:"status,omitempty"`
	Station      string     `json:"station,omitempty"`
	Location     string     `json:"location,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	Towards      string     `json:"towards,omitempty"`
	RelatedLines StringList `json:"relatedLines,omitempty"`
	RelatedStops StringList `json:"relatedStops,omitempty"`
}

// timestampLayouts are tried in order; the API uses a numeric offset without a colon
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
}

// Timestamp decodes the API's ISO-8601 timestamps. null and "" decode to the zero time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// StringList accepts a JSON array of strings or numbers, a comma separated
// string, or null
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = splitList(s)
		return nil
	}

	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("string list: %w", err)
	}

	out := make(StringList, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			out = append(out, val)
		case float64:
			out = append(out, strconv.FormatFloat(val, 'f', -1, 64))
		}
	}
	*l = out
	return nil
}

func splitList(s string) StringList {
	var out StringList
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
