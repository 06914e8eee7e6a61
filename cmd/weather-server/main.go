package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	httpapi "github.com/meteolab/weather-report/internal/api/http"
	"github.com/meteolab/weather-report/internal/catalog"
	"github.com/meteolab/weather-report/internal/config"
	"github.com/meteolab/weather-report/internal/store"
	"github.com/meteolab/weather-report/internal/weather"
	"github.com/meteolab/weather-report/internal/weather/providers"
)

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("failed to load config", zap.Error(err))
	}

	cat, err := catalog.Load(cfg.CitiesFile)
	if err != nil {
		zlog.Fatal("failed to load city catalog", zap.Error(err))
	}

	service := buildService(cfg, cat, zlog)

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-report",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-report",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

// buildService wires the resolvers, conditions source, and CSV store into the
// pipeline service.
func buildService(cfg *config.AppConfig, cat *catalog.Catalog, zlog *zap.Logger) *weather.Service {
	// Shared HTTP client and rate limiter for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	limiter := rate.NewLimiter(rate.Limit(cfg.OutboundRPS), burst(cfg.OutboundRPS))

	openMeteo := providers.NewOpenMeteo(httpClient, limiter)

	var source weather.ConditionsSource = openMeteo
	switch cfg.Provider {
	case "openweathermap":
		source = providers.NewOpenWeather(httpClient, limiter, cfg.OpenWeatherAPIKey)
	case "weatherapi":
		source = providers.NewWeatherAPI(httpClient, limiter, cfg.WeatherAPIKey)
	}

	// Open-Meteo geocoding needs no key; Google geocoding is used when a key
	// is configured.
	var geo weather.Resolver = openMeteo
	if cfg.GoogleAPIKey != "" {
		geo = providers.NewGoogle(cfg.GoogleAPIKey)
	}

	csvStore := store.NewCSVStore(cfg.DataDir)

	return weather.NewService(cat, geo, source, csvStore, cat.Names(), zlog)
}

func burst(rps float64) int {
	if rps < 1 {
		return 1
	}
	return int(rps)
}
