package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/docopt/docopt-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/meteolab/weather-report/internal/catalog"
	"github.com/meteolab/weather-report/internal/cli"
	"github.com/meteolab/weather-report/internal/config"
	"github.com/meteolab/weather-report/internal/store"
	"github.com/meteolab/weather-report/internal/weather"
	"github.com/meteolab/weather-report/internal/weather/providers"
)

func main() {
	usage := `Weather Report.

Fetch current weather for a set of cities, rank them, and write the results
as CSV files under the data directory.

Usage:
  weatherctl [--use-api] [--city=<name>]...
  weatherctl -h | --help
  weatherctl --version

Options:
  -h --help         Show this screen.
  --version         Show version.
  --use-api         Resolve coordinates through the geocoding API instead of
                    the builtin catalog.
  -c --city=<name>  City to include; repeat for several. Defaults to the
                    whole catalog.
`

	arguments, err := docopt.ParseArgs(usage, os.Args[1:], "weatherctl 1.0.0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "weatherctl: %v\n", err)
		os.Exit(2)
	}

	useAPI, _ := arguments.Bool("--use-api")
	cities, _ := arguments["--city"].([]string)

	zlog, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("failed to load config", zap.Error(err))
	}

	cat, err := catalog.Load(cfg.CitiesFile)
	if err != nil {
		zlog.Fatal("failed to load city catalog", zap.Error(err))
	}

	service := buildService(cfg, cat, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := cli.Options{UseAPI: useAPI, Cities: cities}
	if err := cli.Run(ctx, service, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "weatherctl: %v\n", err)
		os.Exit(1)
	}
}

// buildService wires the resolvers, conditions source, and CSV store into the
// pipeline service.
func buildService(cfg *config.AppConfig, cat *catalog.Catalog, zlog *zap.Logger) *weather.Service {
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
