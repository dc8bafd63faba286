// Package main is the entry point for the mytramstation server.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/randytsao24/mytramstation/internal/api"
	"github.com/randytsao24/mytramstation/internal/assistant"
	"github.com/randytsao24/mytramstation/internal/config"
	"github.com/randytsao24/mytramstation/internal/transit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	monitors := transit.NewMonitorService(cfg.BaseURL, cfg.HTTPTimeout())
	svc := assistant.NewService(cfg.Registry(), monitors)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(cfg, svc),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("mytramstation server starting",
		"port", cfg.Port,
		"env", cfg.Env,
		"upstream", cfg.BaseURL,
		"interval_minutes", cfg.Policy.IntervalMinutes,
		"minimum_count", cfg.Policy.MinimumCount,
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
