package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meteolab/weather-report/internal/weather"
)

// builtin is the default city table used when no catalog file is configured.
var builtin = []weather.City{
	{Name: "London", Latitude: 51.5074, Longitude: -0.1278},
	{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	{Name: "New York", Latitude: 40.7128, Longitude: -74.0060},
	{Name: "Tokyo", Latitude: 35.6762, Longitude: 139.6503},
	{Name: "Sydney", Latitude: -33.8688, Longitude: 151.2093},
	{Name: "Berlin", Latitude: 52.5200, Longitude: 13.4050},
	{Name: "Madrid", Latitude: 40.4168, Longitude: -3.7038},
	{Name: "Rome", Latitude: 41.9028, Longitude: 12.4964},
	{Name: "Cairo", Latitude: 30.0444, Longitude: 31.2357},
	{Name: "Singapore", Latitude: 1.3521, Longitude: 103.8198},
}

// Catalog is an immutable name-to-coordinates table loaded once at startup.
// Lookups are case-insensitive; the stored capitalization is canonical.
type Catalog struct {
	byName map[string]weather.City
	names  []string
}

// Builtin returns a catalog backed by the default city table.
func Builtin() *Catalog {
	c, err := build(builtin)
	if err != nil {
		// The builtin table is compiled in and has no duplicates.
		panic(err)
	}
	return c
}

// FromFile loads a catalog from a YAML file of the form:
//
//	cities:
//	  - name: London
//	    latitude: 51.5074
//	    longitude: -0.1278
func FromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var doc struct {
		Cities []weather.City `yaml:"cities"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	if len(doc.Cities) == 0 {
		return nil, fmt.Errorf("catalog file %s lists no cities", path)
	}

	return build(doc.Cities)
}

// Load returns the catalog from path, or the builtin table when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin(), nil
	}
	return FromFile(path)
}

func build(cities []weather.City) (*Catalog, error) {
	c := &Catalog{
		byName: make(map[string]weather.City, len(cities)),
		names:  make([]string, 0, len(cities)),
	}
	for _, city := range cities {
		name := strings.TrimSpace(city.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry with empty name")
		}
		key := strings.ToLower(name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", name)
		}
		city.Name = name
		c.byName[key] = city
		c.names = append(c.names, name)
	}
	return c, nil
}

// Lookup finds a city by name, ignoring case.
func (c *Catalog) Lookup(name string) (weather.City, bool) {
	city, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return city, ok
}

// Names returns the city names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Name implements weather.Resolver.
func (c *Catalog) Name() string {
	return "catalog"
}

// Resolve implements weather.Resolver against the static table.
func (c *Catalog) Resolve(_ context.Context, name string) (weather.City, error) {
	city, ok := c.Lookup(name)
	if !ok {
		return weather.City{}, fmt.Errorf("%w: %q is not in the catalog", weather.ErrUnknownCity, name)
	}
	return city, nil
}

var _ weather.Resolver = (*Catalog)(nil)
