package weather

import (
	"context"
)

// RawConditions is a provider payload before normalization. The metric fields
// are pointers so a value the provider omitted can be told apart from a zero.
type RawConditions struct {
	Source      string
	Temperature *float64 // °C
	Humidity    *float64 // percent
	WindSpeed   *float64 // km/h
}

// Resolver turns a city name into coordinates, either from the static catalog
// or from a live geocoding provider.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, city string) (City, error)
}

// ConditionsSource fetches current conditions for a resolved city with a
// single synchronous call (e.g. Open-Meteo, OpenWeatherMap, WeatherAPI).
type ConditionsSource interface {
	Name() string
	Current(ctx context.Context, city City) (RawConditions, error)
}

// Store is the contract the CSV store (and any future persistent store) must satisfy.
type Store interface {
	WriteBatch(batch Batch) error
	ReadBatch() (Batch, error)
	Path() string
}
