package weather

import "errors"

var (
	// ErrUnknownCity is returned when a city name has no catalog entry.
	ErrUnknownCity = errors.New("unknown city")

	// ErrGeocoding is returned when the geocoding provider finds no match
	// for a city name or the call itself fails.
	ErrGeocoding = errors.New("geocoding failed")

	// ErrProvider is returned when the weather provider call fails or
	// answers with a non-success status.
	ErrProvider = errors.New("weather provider failed")

	// ErrMalformedResponse is returned when a provider payload cannot be
	// decoded or lacks a required field.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrEmptyBatch is returned when a fetch cycle produced no records at all.
	ErrEmptyBatch = errors.New("no weather records in batch")
)
