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

// WeatherAPI reads current conditions from WeatherAPI.com. Requires an API key.
type WeatherAPI struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
}

var _ weather.ConditionsSource = (*WeatherAPI)(nil)

func NewWeatherAPI(client *http.Client, limiter *rate.Limiter, apiKey string) *WeatherAPI {
	return &WeatherAPI{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: HTTPClientConfig{Client: client},
		limiter: limiter,
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPI) Name() string {
	return p.name
}

func (p *WeatherAPI) Current(ctx context.Context, city weather.City) (weather.RawConditions, error) {
	if p.apiKey == "" {
		return weather.RawConditions{}, fmt.Errorf("%w: %s api key is not configured", weather.ErrProvider, p.name)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI takes "q" as "lat,lon".
		values.Set("q", fmt.Sprintf("%f,%f", city.Latitude, city.Longitude))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, p.httpCfg, p.limiter, p.circuit, buildRequest)
	if err != nil {
		return weather.RawConditions{}, fmt.Errorf("%w: %s: %v", weather.ErrProvider, p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			TempC    *float64 `json:"temp_c"`
			Humidity *float64 `json:"humidity"`
			WindKph  *float64 `json:"wind_kph"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.RawConditions{}, fmt.Errorf("%w: %s: %v", weather.ErrMalformedResponse, p.name, err)
	}

	return weather.RawConditions{
		Source:      p.name,
		Temperature: payload.Current.TempC,
		Humidity:    payload.Current.Humidity,
		WindSpeed:   payload.Current.WindKph,
	}, nil
}
