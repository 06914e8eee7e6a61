package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/meteolab/weather-report/internal/weather"
)

const (
	mainFile    = "weather_data.csv"
	stampLayout = "20060102_150405"
)

var header = []string{"city", "temperature", "humidity", "wind_speed"}

var (
	// ErrNotFound is returned when no weather data has been persisted yet.
	ErrNotFound = errors.New("no persisted weather data")

	// ErrWrite wraps filesystem failures while persisting a batch.
	ErrWrite = errors.New("persisting weather data failed")
)

// CSVStore persists weather batches as CSV files under a data directory.
// The main file always holds the latest batch in full; every write also
// leaves two ranked derivative files next to it, named with the write time.
type CSVStore struct {
	mu  sync.Mutex
	dir string
}

var _ weather.Store = (*CSVStore)(nil)

// NewCSVStore creates a store rooted at dir. The directory is created on the
// first write.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// Path reports where the main CSV file lives.
func (s *CSVStore) Path() string {
	return filepath.Join(s.dir, mainFile)
}

// WriteBatch replaces the main CSV with the batch, row order preserved, and
// writes the top-5-by-temperature and wind-ranked derivatives alongside it.
// The main file goes through a temp file and a rename so a concurrent reader
// never observes a torn write.
func (s *CSVStore) WriteBatch(batch weather.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := s.writeMain(batch); err != nil {
		return err
	}
	return s.writeDerived(batch)
}

func (s *CSVStore) writeMain(batch weather.Batch) error {
	tmp, err := os.CreateTemp(s.dir, mainFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := writeRows(tmp, batch); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (s *CSVStore) writeDerived(batch weather.Batch) error {
	stamp := time.Now().Format(stampLayout)

	derived := []struct {
		name   string
		ranked weather.Batch
	}{
		{fmt.Sprintf("weather_data_%s_top5_temp.csv", stamp), weather.Rank(batch, weather.MetricTemperature, 5)},
		{fmt.Sprintf("weather_data_%s_wind_ranked.csv", stamp), weather.Rank(batch, weather.MetricWindSpeed, 0)},
	}

	for _, d := range derived {
		f, err := os.Create(filepath.Join(s.dir, d.name))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		if err := writeRows(f, d.ranked); err != nil {
			f.Close()
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	return nil
}

func writeRows(w io.Writer, batch weather.Batch) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range batch {
		row := []string{
			rec.City,
			strconv.FormatFloat(rec.Temperature, 'f', -1, 64),
			strconv.FormatFloat(rec.Humidity, 'f', -1, 64),
			strconv.FormatFloat(rec.WindSpeed, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadBatch parses the main CSV back into a batch, preserving row order.
// Timestamps are not part of the file format, so loaded records carry none.
func (s *CSVStore) ReadBatch() (weather.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", s.Path(), err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path(), err)
	}
	if len(rows) <= 1 {
		return nil, ErrNotFound
	}

	batch := make(weather.Batch, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("parse %s: row %d has %d columns, want %d", s.Path(), i+2, len(row), len(header))
		}

		temp, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: row %d temperature: %w", s.Path(), i+2, err)
		}
		hum, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: row %d humidity: %w", s.Path(), i+2, err)
		}
		wind, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: row %d wind speed: %w", s.Path(), i+2, err)
		}

		batch = append(batch, weather.Record{
			City:        row[0],
			Temperature: temp,
			Humidity:    hum,
			WindSpeed:   wind,
		})
	}
	return batch, nil
}
