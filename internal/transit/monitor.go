// Package transit fetches real-time departure monitors from the Wiener Linien API
package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const userAgent = "mytramstation/1.0"

// NetworkError is returned when the monitor could not be fetched or decoded
type NetworkError struct {
	StopID int
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("monitor request for stop %d: %v", e.StopID, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MonitorService fetches departure monitors. One call issues exactly one GET,
// without retries or caching.
type MonitorService struct {
	baseURL string
	client  *http.Client
}

// NewMonitorService creates a monitor service against baseURL
func NewMonitorService(baseURL string, timeout time.Duration) *MonitorService {
	return &MonitorService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// GetMonitor fetches and decodes the monitor of a stop
func (s *MonitorService) GetMonitor(ctx context.Context, stopID int) (*MonitorResponse, error) {
	params := url.Values{}
	params.Set("stopId", strconv.Itoa(stopID))
	apiURL := s.baseURL + "/monitor?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, &NetworkError{StopID: stopID, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &NetworkError{StopID: stopID, Err: fmt.Errorf("fetching monitor: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{StopID: stopID, Err: fmt.Errorf("monitor API returned status %d", resp.StatusCode)}
	}

	var result MonitorResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &NetworkError{StopID: stopID, Err: fmt.Errorf("parsing response: %w", err)}
	}

	logTrafficInfo(stopID, &result.Data)
	return &result, nil
}

func logTrafficInfo(stopID int, data *MonitorData) {
	for _, g := range data.TrafficInfoCategoryGroups {
		slog.Info("traffic info category group", "stop_id", stopID, "id", g.ID, "name", g.Name)
	}
	for _, c := range data.TrafficInfoCategories {
		slog.Info("traffic info category", "stop_id", stopID, "id", c.ID, "name", c.Name, "title", c.Title)
	}
	for _, ti := range data.TrafficInfos {
		slog.Info("traffic info",
			"stop_id", stopID,
			"name", ti.Name,
			"title", ti.Title,
			"lines", ti.RelatedLines,
		)
	}
}
