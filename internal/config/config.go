package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var validate = validator.New()

type AppConfig struct {
	Port string `validate:"required"`

	// DataDir is where the CSV files land.
	DataDir string `validate:"required"`

	// CitiesFile optionally replaces the builtin city catalog (YAML).
	CitiesFile string

	// Provider picks the current-conditions source.
	Provider string `validate:"oneof=openmeteo openweathermap weatherapi"`

	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// GoogleAPIKey switches geocoding from Open-Meteo to Google when set.
	GoogleAPIKey string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// OutboundRPS paces outbound provider calls.
	OutboundRPS float64 `validate:"gt=0"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("no .env file loaded", zap.Error(err))
	}

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		DataDir:           getenvDefault("DATA_DIR", "data"),
		CitiesFile:        os.Getenv("CITIES_FILE"),
		Provider:          getenvDefault("WEATHER_PROVIDER", "openmeteo"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.OutboundRPS = getenvFloat("OUTBOUND_RPS", 5)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Provider == "openweathermap" && cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_PROVIDER=openweathermap requires OPENWEATHER_API_KEY")
	}
	if cfg.Provider == "weatherapi" && cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_PROVIDER=weatherapi requires WEATHERAPI_API_KEY")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
		zap.L().Warn("ignoring invalid numeric value", zap.String("key", key), zap.String("value", v))
	}
	return def
}
