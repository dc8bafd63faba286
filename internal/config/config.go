// Package config handles application configuration from defaults, an optional
// YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/randytsao24/mytramstation/internal/location"
	"github.com/randytsao24/mytramstation/internal/models"
)

const defaultBaseURL = "https://www.wienerlinien.at/ogd_realtime"

// Config holds all application configuration.
type Config struct {
	Port               string       `yaml:"port" validate:"required,numeric"`
	Env                string       `yaml:"env" validate:"oneof=development production test"`
	BaseURL            string       `yaml:"baseURL" validate:"required,url"`
	HTTPTimeoutSeconds int          `yaml:"httpTimeoutSeconds" validate:"gt=0"`
	Policy             PolicyConfig `yaml:"policy"`
	Stops              StopsConfig  `yaml:"stops"`
}

// PolicyConfig is the default selection policy used when a request does not set one
type PolicyConfig struct {
	IntervalMinutes int `yaml:"intervalMinutes" validate:"gte=0"`
	MinimumCount    int `yaml:"minimumCount" validate:"gte=0"`
}

// StopConfig is one fixed monitor stop
type StopConfig struct {
	ID    int    `yaml:"id" validate:"gt=0"`
	Label string `yaml:"label" validate:"required"`
}

// RouteConfig holds the two stops of a mode and the hint prefix choosing between them
type RouteConfig struct {
	Prefix   string     `yaml:"prefix" validate:"required"`
	Match    StopConfig `yaml:"match"`
	Fallback StopConfig `yaml:"fallback"`
}

// StopsConfig re-maps the fixed stop roles. It cannot add stops.
type StopsConfig struct {
	Tram RouteConfig `yaml:"tram"`
	Bus  RouteConfig `yaml:"bus"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port:               "3000",
		Env:                "development",
		BaseURL:            defaultBaseURL,
		HTTPTimeoutSeconds: 10,
		Policy: PolicyConfig{
			IntervalMinutes: 15,
			MinimumCount:    2,
		},
		Stops: StopsConfig{
			Tram: routeConfig(location.DefaultTramRoute()),
			Bus:  routeConfig(location.DefaultBusRoute()),
		},
	}
}

// Load reads configuration: built-in defaults, then the YAML file named by
// CONFIG_FILE (default config.yml, optional), then environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := cfg.loadFile(getEnv("CONFIG_FILE", "config.yml")); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.BaseURL = getEnv("WL_BASE_URL", c.BaseURL)
	c.HTTPTimeoutSeconds = getIntEnv("HTTP_TIMEOUT_SECONDS", c.HTTPTimeoutSeconds)
	c.Policy.IntervalMinutes = getIntEnv("INTERVAL_MINUTES", c.Policy.IntervalMinutes)
	c.Policy.MinimumCount = getIntEnv("MINIMUM_COUNT", c.Policy.MinimumCount)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks that the merged configuration is usable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// HTTPTimeout is the timeout of a single upstream request
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// DefaultPolicy returns the configured selection policy
func (c *Config) DefaultPolicy() models.SelectionPolicy {
	return models.SelectionPolicy{
		IntervalMinutes: c.Policy.IntervalMinutes,
		MinimumCount:    c.Policy.MinimumCount,
	}
}

// Registry builds the stop registry from the configured routes
func (c *Config) Registry() *location.Registry {
	return location.NewRegistry(c.Stops.Tram.route(), c.Stops.Bus.route())
}

func (r RouteConfig) route() location.Route {
	return location.Route{
		Prefix:   r.Prefix,
		Match:    models.Stop{ID: r.Match.ID, Label: r.Match.Label},
		Fallback: models.Stop{ID: r.Fallback.ID, Label: r.Fallback.Label},
	}
}

func routeConfig(r location.Route) RouteConfig {
	return RouteConfig{
		Prefix:   r.Prefix,
		Match:    StopConfig{ID: r.Match.ID, Label: r.Match.Label},
		Fallback: StopConfig{ID: r.Fallback.ID, Label: r.Fallback.Label},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
