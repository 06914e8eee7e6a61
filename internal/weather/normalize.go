package weather

import (
	"fmt"
	"time"
)

// Normalize maps a raw provider payload onto the canonical record shape.
// Every metric field must be present; a missing one fails with
// ErrMalformedResponse so the caller can exclude the city instead of
// keeping a partial record. The timestamp is the time of normalization.
func Normalize(city string, raw RawConditions) (Record, error) {
	if raw.Temperature == nil || raw.Humidity == nil || raw.WindSpeed == nil {
		return Record{}, fmt.Errorf("%w: %s payload for %s is missing required fields", ErrMalformedResponse, raw.Source, city)
	}

	return Record{
		City:        city,
		Temperature: *raw.Temperature,
		Humidity:    *raw.Humidity,
		WindSpeed:   *raw.WindSpeed,
		Timestamp:   time.Now().UTC(),
	}, nil
}
