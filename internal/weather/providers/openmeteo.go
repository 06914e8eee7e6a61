package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/meteolab/weather-report/internal/weather"
)

// OpenMeteo talks to the public Open-Meteo APIs: the geocoding endpoint to
// resolve city names and the forecast endpoint for current conditions.
// No API key is required.
type OpenMeteo struct {
	name        string
	geocodeURL  string
	forecastURL string
	httpCfg     HTTPClientConfig
	limiter     *rate.Limiter
	circuit     *gobreaker.CircuitBreaker
}

var (
	_ weather.Resolver         = (*OpenMeteo)(nil)
	_ weather.ConditionsSource = (*OpenMeteo)(nil)
)

func NewOpenMeteo(client *http.Client, limiter *rate.Limiter) *OpenMeteo {
	return &OpenMeteo{
		name:        "openmeteo",
		geocodeURL:  "https://geocoding-api.open-meteo.com/v1/search",
		forecastURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg:     HTTPClientConfig{Client: client},
		limiter:     limiter,
		circuit:     newBreaker("openmeteo"),
	}
}

func (p *OpenMeteo) Name() string {
	return p.name
}

// Resolve looks a city name up through the geocoding endpoint and keeps the
// best match. The returned name is the provider's canonical spelling.
func (p *OpenMeteo) Resolve(ctx context.Context, name string) (weather.City, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", name)
		values.Set("count", "1")

		u := fmt.Sprintf("%s?%s", p.geocodeURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.limiter, p.circuit, buildRequest)
	if err != nil {
		return weather.City{}, fmt.Errorf("%w: %s: %v", weather.ErrGeocoding, name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.City{}, fmt.Errorf("%w: %s: %v", weather.ErrGeocoding, name, err)
	}
	if len(payload.Results) == 0 {
		return weather.City{}, fmt.Errorf("%w: no match for %q", weather.ErrGeocoding, name)
	}

	hit := payload.Results[0]
	return weather.City{
		Name:      hit.Name,
		Latitude:  hit.Latitude,
		Longitude: hit.Longitude,
	}, nil
}

// Current reads the current conditions for the city's coordinates.
func (p *OpenMeteo) Current(ctx context.Context, city weather.City) (weather.RawConditions, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", city.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", city.Longitude))
		values.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m")

		u := fmt.Sprintf("%s?%s", p.forecastURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.limiter, p.circuit, buildRequest)
	if err != nil {
		return weather.RawConditions{}, fmt.Errorf("%w: %s: %v", weather.ErrProvider, p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Temperature *float64 `json:"temperature_2m"`
			Humidity    *float64 `json:"relative_humidity_2m"`
			WindSpeed   *float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.RawConditions{}, fmt.Errorf("%w: %s: %v", weather.ErrMalformedResponse, p.name, err)
	}

	return weather.RawConditions{
		Source:      p.name,
		Temperature: payload.Current.Temperature,
		Humidity:    payload.Current.Humidity,
		WindSpeed:   payload.Current.WindSpeed,
	}, nil
}
