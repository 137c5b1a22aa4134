// Package routes holds the static table of Madison Metro routes known to the
// WebWatch service.
package routes

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var routesYAML []byte

// Route is a defined route in the Madison Metro system. Its JSON form is the
// one served by the HTTP API and printed by the CLI.
type Route struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Latitude and Longitude roughly locate the center of the route.
	Latitude  decimal.NullDecimal `json:"latitude"`
	Longitude decimal.NullDecimal `json:"longitude"`

	Active bool `json:"active"`
}

// Registry is an immutable lookup table of routes keyed by ID.
type Registry struct {
	ordered []Route
	byID    map[string]Route
}

type routeRow struct {
	ID        string `yaml:"id" validate:"required"`
	Name      string `yaml:"name" validate:"required"`
	Latitude  string `yaml:"latitude" validate:"omitempty,latitude"`
	Longitude string `yaml:"longitude" validate:"omitempty,longitude"`
	Active    bool   `yaml:"active"`
}

type routeTable struct {
	Routes []routeRow `yaml:"routes" validate:"required,min=1,dive"`
}

var defaultRegistry = mustLoad(routesYAML)

// Load builds a Registry from a YAML route table.
func Load(data []byte) (*Registry, error) {
	var table routeTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode route table: %w", err)
	}
	if err := validator.New().Struct(table); err != nil {
		return nil, fmt.Errorf("validate route table: %w", err)
	}

	reg := &Registry{byID: make(map[string]Route, len(table.Routes))}
	for _, row := range table.Routes {
		if _, dup := reg.byID[row.ID]; dup {
			return nil, fmt.Errorf("duplicate route id %q", row.ID)
		}
		r := Route{ID: row.ID, Name: row.Name, Active: row.Active}
		if row.Latitude != "" && row.Longitude != "" {
			lat, err := decimal.NewFromString(row.Latitude)
			if err != nil {
				return nil, fmt.Errorf("route %s latitude: %w", row.ID, err)
			}
			lon, err := decimal.NewFromString(row.Longitude)
			if err != nil {
				return nil, fmt.Errorf("route %s longitude: %w", row.ID, err)
			}
			r.Latitude = decimal.NewNullDecimal(lat)
			r.Longitude = decimal.NewNullDecimal(lon)
		}
		reg.ordered = append(reg.ordered, r)
		reg.byID[r.ID] = r
	}
	return reg, nil
}

func mustLoad(data []byte) *Registry {
	reg, err := Load(data)
	if err != nil {
		panic(fmt.Sprintf("routes: embedded table: %v", err))
	}
	return reg
}

// Default returns the registry built from the embedded route table.
func Default() *Registry {
	return defaultRegistry
}

// All returns every route in table order.
func (r *Registry) All() []Route {
	out := make([]Route, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// IDs returns the ID of every route.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.ordered))
	for _, route := range r.ordered {
		ids = append(ids, route.ID)
	}
	return ids
}

// ByID looks up a route. The bool is false when the ID is not in the table.
func (r *Registry) ByID(id string) (Route, bool) {
	route, ok := r.byID[id]
	return route, ok
}

// Has reports whether id names a known route.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}
