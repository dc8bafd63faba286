package api_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/randytsao24/mytramstation/internal/api"
	"github.com/randytsao24/mytramstation/internal/assistant"
	"github.com/randytsao24/mytramstation/internal/config"
	"github.com/randytsao24/mytramstation/internal/transit"
)

// ---------------------------------------------------------------------------
// Fake upstream monitor API
// ---------------------------------------------------------------------------

const tramMonitor = `{
  "data": {
    "monitors": [{
      "locationStop": {"type": "Feature", "properties": {"title": "Inzersdorf", "attributes": {"rbl": %[1]d}}},
      "lines": [{
        "name": "6", "towards": "Burggasse", "direction": "H",
        "departures": {"departure": [
          {"departureTime": {"timePlanned": "2024-03-05T08:02:00.000+0100", "timeReal": "2024-03-05T08:05:00.000+0100", "countdown": 1}},
          {"departureTime": {"timePlanned": "2024-03-05T08:09:00.000+0100", "countdown": 8}},
          {"departureTime": {"timePlanned": "2024-03-05T08:30:00.000+0100", "countdown": 29}}
        ]}
      }]
    }],
    "trafficInfos": [{"name": "aufzug_inz", "title": "Aufzug außer Betrieb", "description": "Der Aufzug ist defekt.", "relatedStops": "%[1]d"}]
  },
  "message": {"value": "OK", "messageCode": 1, "serverTime": "2024-03-05T08:00:00.000+0100"}
}`

const busMonitor = `{
  "data": {
    "monitors": [
      {"locationStop": {}, "lines": [
        {"name": "65A", "towards": "Reumannplatz", "departures": {"departure": [
          {"departureTime": {"timePlanned": "2024-03-05T08:04:00.000+0100", "countdown": 4}},
          {"departureTime": {"timePlanned": "2024-03-05T08:24:00.000+0100", "countdown": 24}}
        ]}}
      ]},
      {"locationStop": {}, "lines": [
        {"name": "66A", "towards": "Liesing", "departures": {"departure": [
          {"departureTime": {"timePlanned": "2024-03-05T08:02:00.000+0100", "countdown": 2}}
        ]}}
      ]}
    ]
  },
  "message": {"value": "OK", "messageCode": 1, "serverTime": "2024-03-05T08:00:00.000+0100"}
}`

type upstream struct {
	*httptest.Server
	requests atomic.Int32
	failing  atomic.Bool
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		if u.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		switch stopID := r.URL.Query().Get("stopId"); stopID {
		case "5939", "5903":
			id, _ := strconv.Atoi(stopID)
			fmt.Fprintf(w, tramMonitor, id)
		case "1890", "1914":
			io.WriteString(w, busMonitor)
		default:
			t.Errorf("unexpected stopId %q", stopID)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(u.Close)
	return u
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T, up *upstream) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Env = "test"
	cfg.BaseURL = up.URL
	cfg.HTTPTimeoutSeconds = 5

	monitors := transit.NewMonitorService(cfg.BaseURL, cfg.HTTPTimeout())
	svc := assistant.NewService(cfg.Registry(), monitors)

	srv := httptest.NewServer(api.NewRouter(cfg, svc))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, server *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return m
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("status = %d, want %d", resp.StatusCode, want)
	}
}

func assertField(t *testing.T, body map[string]any, field string) {
	t.Helper()
	if _, ok := body[field]; !ok {
		t.Errorf("missing field %q in response: %v", field, body)
	}
}

// ---------------------------------------------------------------------------
// Health & root
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	srv := newTestServer(t, newUpstream(t))

	resp := get(t, srv, "/health")
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	assertField(t, body, "uptime")
	if body["status"] != "OK" {
		t.Errorf("status = %v, want OK", body["status"])
	}
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t, newUpstream(t))

	resp := get(t, srv, "/")
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	assertField(t, body, "endpoints")
	stops, ok := body["stops"].([]any)
	if !ok || len(stops) != 4 {
		t.Errorf("expected 4 stops, got %v", body["stops"])
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, newUpstream(t))

	resp := get(t, srv, "/transit/nowhere")
	assertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, newUpstream(t))

	resp := get(t, srv, "/health")
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "alexa-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "alexa-123" {
		t.Errorf("expected caller request id to be kept, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// Departures
// ---------------------------------------------------------------------------

func TestSpeak(t *testing.T) {
	up := newUpstream(t)
	srv := newTestServer(t, up)

	tests := []struct {
		name   string
		path   string
		speech string
		stopID float64
	}{
		{"tram towards opera", "/departures/tram?hint=Opera", "Next departures are in 1 minute, 8 minutes", 5939},
		{"tram default", "/departures/tram", "Next departures are in 1 minute, 8 minutes", 5903},
		{"tram zero window", "/departures/tram?interval=0&minimum=1", "Next departures are in 1 minute", 5903},
		{"bus willendorf", "/departures/BUS?hint=will", "Next departures are in 2 minutes Liesing, 4 minutes Reumannplatz", 1890},
		{"bus default", "/departures/bus?hint=billa", "Next departures are in 2 minutes Liesing, 4 minutes Reumannplatz", 1914},
		{"nothing in window", "/departures/bus?interval=1&minimum=0", "No departures found", 1914},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv, tt.path)
			assertStatus(t, resp, http.StatusOK)

			body := decodeBody(t, resp)
			if body["speech"] != tt.speech {
				t.Errorf("speech = %q, want %q", body["speech"], tt.speech)
			}
			stop, _ := body["stop"].(map[string]any)
			if stop["id"] != tt.stopID {
				t.Errorf("stop id = %v, want %v", stop["id"], tt.stopID)
			}
		})
	}

	if got := up.requests.Load(); got != int32(len(tests)) {
		t.Errorf("expected one upstream request per query, got %d for %d queries", got, len(tests))
	}
}

func TestSpeak_UpstreamFailure(t *testing.T) {
	up := newUpstream(t)
	up.failing.Store(true)
	srv := newTestServer(t, up)

	resp := get(t, srv, "/departures/tram?hint=oper")
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	if body["speech"] != "Failed to execute a request" {
		t.Errorf("expected fallback phrase, got %v", body["speech"])
	}
	if got := up.requests.Load(); got != 1 {
		t.Errorf("expected exactly one upstream request without retries, got %d", got)
	}
}

func TestSpeak_InvalidMode(t *testing.T) {
	srv := newTestServer(t, newUpstream(t))

	resp := get(t, srv, "/departures/subway")
	assertStatus(t, resp, http.StatusBadRequest)
	body := decodeBody(t, resp)
	assertField(t, body, "error")
}

func TestList(t *testing.T) {
	srv := newTestServer(t, newUpstream(t))

	resp := get(t, srv, "/departures/tram/list?hint=oper")
	assertStatus(t, resp, http.StatusOK)

	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Errorf("expected success=true, body: %v", body)
	}

	deps, ok := body["departures"].([]any)
	if !ok || len(deps) != 2 {
		t.Fatalf("expected 2 departures, got %v", body["departures"])
	}
	first := deps[0].(map[string]any)
	if first["is_late"] != true {
		t.Errorf("expected first departure to be late (3 minutes behind), got %v", first)
	}
	if _, ok := first["line_name"]; ok {
		t.Errorf("tram departures should not carry a line name, got %v", first)
	}
}

func TestList_UpstreamFailure(t *testing.T) {
	up := newUpstream(t)
	up.failing.Store(true)
	srv := newTestServer(t, up)

	resp := get(t, srv, "/departures/bus/list")
	assertStatus(t, resp, http.StatusBadGateway)

	body := decodeBody(t, resp)
	if body["error"] != "Failed to execute a request" {
		t.Errorf("expected fallback phrase as error, got %v", body["error"])
	}
}

func TestAlerts(t *testing.T) {
	srv := newTestServer(t, newUpstream(t))

	resp := get(t, srv, "/alerts/tram?hint=oper")
	assertStatus(t, resp, http.StatusOK)
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-protobuf") {
		t.Errorf("unexpected content type %q", ct)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(buf, feed); err != nil {
		t.Fatalf("decoding feed: %v", err)
	}
	if len(feed.GetEntity()) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(feed.GetEntity()))
	}
	informed := feed.GetEntity()[0].GetAlert().GetInformedEntity()
	if len(informed) != 1 || informed[0].GetStopId() != "5939" {
		t.Errorf("expected alert informing stop 5939, got %v", informed)
	}
}
