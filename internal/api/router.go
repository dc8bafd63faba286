package api

import (
	"net/http"
	"time"

	"github.com/randytsao24/mytramstation/internal/api/handlers"
	"github.com/randytsao24/mytramstation/internal/config"
)

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(cfg *config.Config, departures handlers.DepartureProvider) http.Handler {
	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg.Env)
	rootHandler := handlers.NewRootHandler(departures.Stops())
	departuresHandler := handlers.NewDeparturesHandler(departures, cfg.DefaultPolicy())

	mux.HandleFunc("GET /{$}", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("GET /departures/{mode}", departuresHandler.Speak)
	mux.HandleFunc("GET /departures/{mode}/list", departuresHandler.List)
	mux.HandleFunc("GET /alerts/{mode}", departuresHandler.Alerts)

	mux.HandleFunc("/", rootHandler.NotFound)

	// The upstream request has its own timeout; leave room for it
	handler := Chain(mux,
		RequestID,
		Recovery,
		Logging,
		Timeout(cfg.HTTPTimeout()+5*time.Second),
	)

	return handler
}
