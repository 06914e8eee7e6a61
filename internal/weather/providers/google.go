package providers

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/meteolab/weather-report/internal/weather"
)

// Google resolves city names through the Google Geocoding API. It is selected
// over Open-Meteo geocoding when a Google API key is configured.
type Google struct {
	name string
}

var _ weather.Resolver = (*Google)(nil)

// NewGoogle configures the geocoder with the API key. The geocoder client
// keeps the key in package state, so one key serves the whole process.
func NewGoogle(apiKey string) *Google {
	geocoder.ApiKey = apiKey
	return &Google{name: "google"}
}

func (p *Google) Name() string {
	return p.name
}

func (p *Google) Resolve(ctx context.Context, name string) (weather.City, error) {
	// The geocoder manages its own HTTP transport and takes no context;
	// honor cancellation before spending a call.
	if err := ctx.Err(); err != nil {
		return weather.City{}, err
	}

	location, err := geocoder.Geocoding(geocoder.Address{City: name})
	if err != nil {
		return weather.City{}, fmt.Errorf("%w: %s: %v", weather.ErrGeocoding, name, err)
	}

	return weather.City{
		Name:      name,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}, nil
}
