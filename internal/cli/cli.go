package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meteolab/weather-report/internal/common"
	"github.com/meteolab/weather-report/internal/weather"
)

// Options are the parsed command-line selections.
type Options struct {
	// UseAPI resolves city names through the geocoding provider instead of
	// the builtin catalog.
	UseAPI bool

	// Cities limits the run to these names. Empty means the whole catalog.
	Cities []string
}

// Run executes one fetch cycle, prints the conditions to w, and persists the
// batch as CSV. Per-city failures are reported and skipped; Run returns an
// error only when no city produced a record or the CSV write failed.
func Run(ctx context.Context, service *weather.Service, opts Options, w io.Writer) error {
	mode := weather.ModeCatalog
	if opts.UseAPI {
		mode = weather.ModeAPI
	}

	batch, failures, err := service.Aggregate(ctx, opts.Cities, mode)
	if err != nil {
		reportFailures(w, failures)
		return err
	}

	fmt.Fprintln(w, "\nCurrent Weather Information:")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, rec := range batch {
		fmt.Fprintf(w, "\nCity: %s\n", rec.City)
		fmt.Fprintf(w, "Temperature: %.1f°C (%.1f°F)\n",
			rec.Temperature, common.CelsiusToFahrenheit(rec.Temperature))
		fmt.Fprintf(w, "Humidity: %.0f%%\n", rec.Humidity)
		fmt.Fprintf(w, "Wind Speed: %.1f km/h (%.1f mph)\n",
			rec.WindSpeed, common.KphToMph(rec.WindSpeed))
		fmt.Fprintf(w, "Time: %s\n", rec.Timestamp.Format(time.RFC3339))
	}
	fmt.Fprintln(w, "\n"+strings.Repeat("-", 80))

	reportFailures(w, failures)

	if err := service.PersistBatch(batch); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %d records to %s\n", len(batch), service.CSVPath())
	return nil
}

func reportFailures(w io.Writer, failures []weather.Failure) {
	for _, f := range failures {
		fmt.Fprintf(w, "Skipped %s: %v\n", f.City, f.Err)
	}
}
