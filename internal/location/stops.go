// Package location resolves spoken stop hints to the fixed monitor stops
package location

import (
	"strings"

	"github.com/randytsao24/mytramstation/internal/models"
)

// Default stop ids of the Wiener Linien monitor API
var (
	InzersdorfToOpera = models.Stop{ID: 5939, Label: "Inzersdorf towards Oper"}
	InzersdorfToBaden = models.Stop{ID: 5903, Label: "Inzersdorf towards Baden"}
	WillendorferGasse = models.Stop{ID: 1890, Label: "Willendorfer Gasse"}
	PurkytgasseBilla  = models.Stop{ID: 1914, Label: "Purkytgasse Billa"}
)

const (
	defaultTramPrefix = "oper"
	defaultBusPrefix  = "will"
)

// Route maps one mode to its stops: hints starting with Prefix go to Match,
// everything else goes to Fallback.
type Route struct {
	Prefix   string
	Match    models.Stop
	Fallback models.Stop
}

// Registry is the immutable stop table. Safe for concurrent use.
type Registry struct {
	routes map[models.Mode]Route
}

// DefaultTramRoute returns the Inzersdorf tram stops
func DefaultTramRoute() Route {
	return Route{Prefix: defaultTramPrefix, Match: InzersdorfToOpera, Fallback: InzersdorfToBaden}
}

// DefaultBusRoute returns the Purkytgasse area bus stops
func DefaultBusRoute() Route {
	return Route{Prefix: defaultBusPrefix, Match: WillendorferGasse, Fallback: PurkytgasseBilla}
}

// NewRegistry creates a registry from the tram and bus routes
func NewRegistry(tram, bus Route) *Registry {
	tram.Prefix = strings.ToLower(tram.Prefix)
	bus.Prefix = strings.ToLower(bus.Prefix)
	return &Registry{
		routes: map[models.Mode]Route{
			models.Tram: tram,
			models.Bus:  bus,
		},
	}
}

// NewDefaultRegistry creates the registry with the built-in stops
func NewDefaultRegistry() *Registry {
	return NewRegistry(DefaultTramRoute(), DefaultBusRoute())
}

// Resolve picks the stop for a selector. It never fails: any hint that does
// not start with the mode's prefix resolves to the fallback stop.
func (r *Registry) Resolve(sel models.StopSelector) models.Stop {
	route, ok := r.routes[sel.Mode]
	if !ok {
		route = r.routes[models.Tram]
	}

	hint := strings.ToLower(sel.Hint)
	if route.Prefix != "" && strings.HasPrefix(hint, route.Prefix) {
		return route.Match
	}
	return route.Fallback
}

// All returns every configured stop, tram stops first
func (r *Registry) All() []models.Stop {
	tram, bus := r.routes[models.Tram], r.routes[models.Bus]
	return []models.Stop{tram.Match, tram.Fallback, bus.Match, bus.Fallback}
}
