package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meteolab/weather-report/internal/weather"
)

func testBatch() weather.Batch {
	now := time.Now().UTC()
	return weather.Batch{
		{City: "Oslo", Temperature: 3.5, Humidity: 80, WindSpeed: 5, Timestamp: now},
		{City: "Lisbon", Temperature: 21, Humidity: 55, WindSpeed: 20, Timestamp: now},
		{City: "Dublin", Temperature: 12.2, Humidity: 70, WindSpeed: 12, Timestamp: now},
	}
}

// Writing a batch and parsing the file back must preserve the
// (city, temperature, humidity, wind_speed) tuples and their order.
func TestWriteReadRoundTrip(t *testing.T) {
	s := NewCSVStore(t.TempDir())
	batch := testBatch()

	if err := s.WriteBatch(batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.ReadBatch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(batch) {
		t.Fatalf("expected %d records, got %d", len(batch), len(got))
	}
	for i, want := range batch {
		rec := got[i]
		if rec.City != want.City ||
			rec.Temperature != want.Temperature ||
			rec.Humidity != want.Humidity ||
			rec.WindSpeed != want.WindSpeed {
			t.Fatalf("record %d differs: want %+v, got %+v", i, want, rec)
		}
	}
}

func TestReadBatchWithoutDataIsNotFound(t *testing.T) {
	s := NewCSVStore(t.TempDir())

	if _, err := s.ReadBatch(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteBatchOverwrites(t *testing.T) {
	s := NewCSVStore(t.TempDir())

	if err := s.WriteBatch(testBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := weather.Batch{{City: "Bergen", Temperature: 7.5, Humidity: 88, WindSpeed: 31}}
	if err := s.WriteBatch(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.ReadBatch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].City != "Bergen" {
		t.Fatalf("expected only the Bergen record, got %v", got)
	}
}

func TestWriteBatchLeavesRankedDerivatives(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir)

	if err := s.WriteBatch(testBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	top5, err := filepath.Glob(filepath.Join(dir, "weather_data_*_top5_temp.csv"))
	if err != nil || len(top5) != 1 {
		t.Fatalf("expected one top5 derivative, got %v (err %v)", top5, err)
	}
	wind, err := filepath.Glob(filepath.Join(dir, "weather_data_*_wind_ranked.csv"))
	if err != nil || len(wind) != 1 {
		t.Fatalf("expected one wind derivative, got %v (err %v)", wind, err)
	}

	// The wind derivative must be ranked by wind speed descending.
	data, err := os.ReadFile(wind[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "city,temperature,humidity,wind_speed" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	wantOrder := []string{"Lisbon", "Dublin", "Oslo"}
	for i, city := range wantOrder {
		if !strings.HasPrefix(lines[i+1], city+",") {
			t.Fatalf("row %d: expected %s first, got %s", i+1, city, lines[i+1])
		}
	}
}

func TestWriteBatchTruncatesTop5(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir)

	batch := weather.Batch{
		{City: "A", Temperature: 1}, {City: "B", Temperature: 2},
		{City: "C", Temperature: 3}, {City: "D", Temperature: 4},
		{City: "E", Temperature: 5}, {City: "F", Temperature: 6},
		{City: "G", Temperature: 7},
	}
	if err := s.WriteBatch(batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	top5, err := filepath.Glob(filepath.Join(dir, "weather_data_*_top5_temp.csv"))
	if err != nil || len(top5) != 1 {
		t.Fatalf("expected one top5 derivative, got %v (err %v)", top5, err)
	}
	data, err := os.ReadFile(top5[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected header plus 5 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "G,") || !strings.HasPrefix(lines[5], "C,") {
		t.Fatalf("expected rows G..C by temperature, got %v", lines[1:])
	}
}

func TestPathPointsAtMainFile(t *testing.T) {
	s := NewCSVStore("data")
	if got := s.Path(); got != filepath.Join("data", "weather_data.csv") {
		t.Fatalf("unexpected path %q", got)
	}
}
