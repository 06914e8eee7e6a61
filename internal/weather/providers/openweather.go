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

// OpenWeather reads current conditions from OpenWeatherMap. Requires an API key.
type OpenWeather struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
}

var _ weather.ConditionsSource = (*OpenWeather)(nil)

func NewOpenWeather(client *http.Client, limiter *rate.Limiter, apiKey string) *OpenWeather {
	return &OpenWeather{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: HTTPClientConfig{Client: client},
		limiter: limiter,
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeather) Name() string {
	return p.name
}

func (p *OpenWeather) Current(ctx context.Context, city weather.City) (weather.RawConditions, error) {
	if p.apiKey == "" {
		return weather.RawConditions{}, fmt.Errorf("%w: %s api key is not configured", weather.ErrProvider, p.name)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", city.Latitude))
		values.Set("lon", fmt.Sprintf("%f", city.Longitude))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.limiter, p.circuit, buildRequest)
	if err != nil {
		return weather.RawConditions{}, fmt.Errorf("%w: %s: %v", weather.ErrProvider, p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"` // m/s
		} `json:"wind"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.RawConditions{}, fmt.Errorf("%w: %s: %v", weather.ErrMalformedResponse, p.name, err)
	}

	// OpenWeatherMap reports wind in m/s; the record unit is km/h.
	var wind *float64
	if payload.Wind.Speed != nil {
		kph := *payload.Wind.Speed * 3.6
		wind = &kph
	}

	return weather.RawConditions{
		Source:      p.name,
		Temperature: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   wind,
	}, nil
}
