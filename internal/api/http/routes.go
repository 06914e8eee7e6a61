package httpapi

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/meteolab/weather-report/internal/store"
	"github.com/meteolab/weather-report/internal/viz"
	"github.com/meteolab/weather-report/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. The static paths
// go in before the :city parameter so they are never captured as a city name.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Get("/weather/visualization", handleVisualization(service))
	app.Get("/weather/download/csv", handleDownload(service))
	app.Get("/weather/:city", handleWeather(service))
}

// weatherQuery holds query parameters for the weather endpoint. A leading "-"
// on sort_by flips the ranking to ascending.
type weatherQuery struct {
	SortBy string `validate:"omitempty,oneof=temperature wind_speed -temperature -wind_speed"`
}

func handleWeather(service *weather.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := weatherQuery{SortBy: c.Query("sort_by")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"invalid sort_by: must be one of temperature, -temperature, wind_speed, -wind_speed")
		}

		name := c.Params("city")
		if decoded, err := url.PathUnescape(name); err == nil {
			name = decoded
		}

		// "all" means every catalog city; a specific name goes through the
		// live geocoder so cities outside the catalog work too.
		names := []string{name}
		mode := weather.ModeAPI
		if strings.EqualFold(name, "all") {
			names = nil
			mode = weather.ModeCatalog
		}

		batch, failures, err := service.Aggregate(c.UserContext(), names, mode)
		if err != nil {
			return weatherError(err, failures)
		}

		if len(failures) > 0 {
			skipped := make([]string, len(failures))
			for i, f := range failures {
				skipped[i] = f.City
			}
			c.Set("X-Skipped-Cities", strings.Join(skipped, ", "))
		}

		if q.SortBy != "" {
			metric := weather.Metric(strings.TrimPrefix(q.SortBy, "-"))
			if strings.HasPrefix(q.SortBy, "-") {
				batch = weather.RankAscending(batch, metric, 0)
			} else {
				batch = weather.Rank(batch, metric, 0)
			}
		}

		return c.JSON(batch)
	}
}

// weatherError maps a pipeline failure to an HTTP status. When every
// requested city failed, the first per-city error names the culprit.
func weatherError(err error, failures []weather.Failure) error {
	if errors.Is(err, weather.ErrEmptyBatch) && len(failures) > 0 {
		err = failures[0].Err
	}

	switch {
	case errors.Is(err, weather.ErrUnknownCity), errors.Is(err, weather.ErrGeocoding):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, weather.ErrProvider), errors.Is(err, weather.ErrMalformedResponse):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, weather.ErrEmptyBatch):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

func handleVisualization(service *weather.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		batch, err := service.LoadBatch()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data has been collected yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load weather data")
		}

		png, err := viz.Render(batch)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render visualization")
		}

		c.Set(fiber.HeaderContentType, "image/png")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="weather_visualization.png"`)
		return c.Send(png)
	}
}

func handleDownload(service *weather.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := service.CSVPath()
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data has been collected yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather data file")
		}

		return c.Download(path, "weather_data.csv")
	}
}
