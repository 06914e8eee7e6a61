package weather

import (
	"time"
)

// City is a place resolved to the coordinates used for provider lookups.
// The name is the record key and must be unique within a batch.
// Immutable once constructed.
type City struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Record is one normalized weather observation for a city.
// Temperature is in degrees Celsius, wind speed in km/h, humidity in percent,
// matching what the providers report.
type Record struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
}

// Batch is the outcome of one fetch cycle: one record per city, in the order
// the cities were requested. Discarded after the invocation that produced it.
type Batch []Record

// Failure records a city that was dropped from a batch and why.
type Failure struct {
	City string
	Err  error
}
