package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeResolver struct {
	name   string
	cities map[string]City
}

func (f *fakeResolver) Name() string { return f.name }

func (f *fakeResolver) Resolve(_ context.Context, name string) (City, error) {
	city, ok := f.cities[strings.ToLower(name)]
	if !ok {
		return City{}, fmt.Errorf("%w: %q", ErrUnknownCity, name)
	}
	return city, nil
}

type fakeSource struct {
	conditions map[string]RawConditions
	errs       map[string]error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Current(_ context.Context, city City) (RawConditions, error) {
	if err, ok := f.errs[city.Name]; ok {
		return RawConditions{}, err
	}
	raw, ok := f.conditions[city.Name]
	if !ok {
		return RawConditions{}, fmt.Errorf("%w: no conditions for %s", ErrProvider, city.Name)
	}
	return raw, nil
}

type fakeStore struct {
	batches []Batch
}

func (f *fakeStore) WriteBatch(b Batch) error { f.batches = append(f.batches, b); return nil }

func (f *fakeStore) ReadBatch() (Batch, error) {
	if len(f.batches) == 0 {
		return nil, errors.New("nothing stored")
	}
	return f.batches[len(f.batches)-1], nil
}

func (f *fakeStore) Path() string { return "test/weather_data.csv" }

func newTestService(src *fakeSource, defaults []string) *Service {
	resolver := &fakeResolver{
		name: "catalog",
		cities: map[string]City{
			"london": {Name: "London", Latitude: 51.5074, Longitude: -0.1278},
			"paris":  {Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
			"oslo":   {Name: "Oslo", Latitude: 59.9139, Longitude: 10.7522},
		},
	}
	return NewService(resolver, resolver, src, &fakeStore{}, defaults, zap.NewNop())
}

func TestAggregateCollectsRequestedCities(t *testing.T) {
	src := &fakeSource{conditions: map[string]RawConditions{
		"London": rawConditions(18, 65, 14),
		"Paris":  rawConditions(21, 55, 9),
	}}
	svc := newTestService(src, nil)

	batch, failures, err := svc.Aggregate(context.Background(), []string{"London", "Paris"}, ModeCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %v", failures)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 records, got %d", len(batch))
	}
	if batch[0].City != "London" || batch[1].City != "Paris" {
		t.Fatalf("expected input order London, Paris; got %s, %s", batch[0].City, batch[1].City)
	}
}

// A city that fails must be reported and skipped without aborting the rest
// of the batch.
func TestAggregateSkipsFailingCities(t *testing.T) {
	src := &fakeSource{conditions: map[string]RawConditions{
		"London": rawConditions(18, 65, 14),
		"Oslo":   rawConditions(4, 82, 22),
	}}
	svc := newTestService(src, nil)

	batch, failures, err := svc.Aggregate(context.Background(), []string{"London", "Atlantis", "Oslo"}, ModeCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(batch) != 2 {
		t.Fatalf("expected 2 records, got %d", len(batch))
	}
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].City != "Atlantis" {
		t.Fatalf("expected Atlantis to fail, got %s", failures[0].City)
	}
	if !errors.Is(failures[0].Err, ErrUnknownCity) {
		t.Fatalf("expected ErrUnknownCity, got %v", failures[0].Err)
	}

	// Every record's city must come from the input set.
	input := map[string]bool{"London": true, "Atlantis": true, "Oslo": true}
	for _, rec := range batch {
		if !input[rec.City] {
			t.Fatalf("record for city %q not in the input set", rec.City)
		}
	}
}

func TestAggregateOnlyFailingCityIsEmptyBatch(t *testing.T) {
	svc := newTestService(&fakeSource{}, nil)

	_, failures, err := svc.Aggregate(context.Background(), []string{"Atlantis"}, ModeCatalog)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if len(failures) != 1 || failures[0].City != "Atlantis" {
		t.Fatalf("expected a failure for Atlantis, got %v", failures)
	}
}

func TestAggregateEmptySelectionUsesDefaults(t *testing.T) {
	src := &fakeSource{conditions: map[string]RawConditions{
		"London": rawConditions(18, 65, 14),
		"Oslo":   rawConditions(4, 82, 22),
	}}
	svc := newTestService(src, []string{"London", "Oslo"})

	for _, selection := range [][]string{nil, {"all"}, {"ALL"}} {
		batch, _, err := svc.Aggregate(context.Background(), selection, ModeCatalog)
		if err != nil {
			t.Fatalf("selection %v: unexpected error: %v", selection, err)
		}
		if len(batch) != 2 {
			t.Fatalf("selection %v: expected 2 records, got %d", selection, len(batch))
		}
	}
}

// Duplicate names must collapse to a single fetch so a batch never carries
// two records for one city.
func TestAggregateDeduplicatesNames(t *testing.T) {
	src := &fakeSource{conditions: map[string]RawConditions{
		"Paris": rawConditions(21, 55, 9),
	}}
	svc := newTestService(src, nil)

	batch, failures, err := svc.Aggregate(context.Background(), []string{"Paris", "paris", "PARIS"}, ModeCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("expected no failures, got %v", failures)
	}
	if len(batch) != 1 {
		t.Fatalf("expected 1 record, got %d", len(batch))
	}
}

func TestAggregateModeSelectsResolver(t *testing.T) {
	catalogRes := &fakeResolver{name: "catalog", cities: map[string]City{
		"paris": {Name: "Paris"},
	}}
	geoRes := &fakeResolver{name: "geo", cities: map[string]City{
		"reykjavik": {Name: "Reykjavik", Latitude: 64.1466, Longitude: -21.9426},
	}}
	src := &fakeSource{conditions: map[string]RawConditions{
		"Reykjavik": rawConditions(2, 75, 30),
	}}
	svc := NewService(catalogRes, geoRes, src, &fakeStore{}, nil, zap.NewNop())

	// Reykjavik is only known to the geo resolver.
	if _, _, err := svc.Aggregate(context.Background(), []string{"Reykjavik"}, ModeCatalog); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch in catalog mode, got %v", err)
	}

	batch, _, err := svc.Aggregate(context.Background(), []string{"Reykjavik"}, ModeAPI)
	if err != nil {
		t.Fatalf("unexpected error in api mode: %v", err)
	}
	if len(batch) != 1 || batch[0].City != "Reykjavik" {
		t.Fatalf("expected one Reykjavik record, got %v", batch)
	}
}

func TestAggregateCancelledContext(t *testing.T) {
	src := &fakeSource{conditions: map[string]RawConditions{
		"Paris": rawConditions(21, 55, 9),
	}}
	svc := newTestService(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := svc.Aggregate(ctx, []string{"Paris"}, ModeCatalog); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
