package viz

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/meteolab/weather-report/internal/weather"
)

// Render draws the batch as one PNG with three stacked bar panels, one each
// for temperature, humidity, and wind speed, one bar per city. Output is
// deterministic for a given batch.
func Render(batch weather.Batch) ([]byte, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: nothing to draw", weather.ErrEmptyBatch)
	}

	names := make([]string, len(batch))
	temps := make(plotter.Values, len(batch))
	hums := make(plotter.Values, len(batch))
	winds := make(plotter.Values, len(batch))
	for i, rec := range batch {
		names[i] = rec.City
		temps[i] = rec.Temperature
		hums[i] = rec.Humidity
		winds[i] = rec.WindSpeed
	}

	panels := []struct {
		title  string
		yLabel string
		values plotter.Values
		fill   color.Color
	}{
		{"Temperature by City", "Temperature (°C)", temps, color.RGBA{R: 0xd9, G: 0x5f, B: 0x4c, A: 0xff}},
		{"Humidity by City", "Humidity (%)", hums, color.RGBA{R: 0x3b, G: 0x7d, B: 0xd8, A: 0xff}},
		{"Wind Speed by City", "Wind Speed (km/h)", winds, color.RGBA{R: 0x4c, G: 0xa6, B: 0x64, A: 0xff}},
	}

	plots := make([][]*plot.Plot, len(panels))
	for i, panel := range panels {
		p := plot.New()
		p.Title.Text = panel.title
		p.X.Label.Text = "City"
		p.Y.Label.Text = panel.yLabel

		bars, err := plotter.NewBarChart(panel.values, vg.Points(20))
		if err != nil {
			return nil, fmt.Errorf("bar chart %q: %w", panel.title, err)
		}
		bars.Color = panel.fill

		p.Add(bars)
		p.NominalX(names...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter

		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.New(8*vg.Inch, 10*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(panels),
		Cols: 1,
		PadY: 5 * vg.Millimeter,
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
