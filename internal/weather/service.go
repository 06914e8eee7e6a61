package weather

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Mode selects which resolver maps city names to coordinates.
type Mode string

const (
	// ModeCatalog resolves names against the static built-in catalog.
	ModeCatalog Mode = "catalog"
	// ModeAPI resolves names through the live geocoding provider.
	ModeAPI Mode = "api"
)

// Service orchestrates the per-city pipeline: resolve, fetch, normalize,
// collect. It also fronts the store for persisting and reloading batches.
type Service struct {
	catalog Resolver
	geo     Resolver
	source  ConditionsSource
	store   Store
	cities  []string // default selection, catalog order
	log     *zap.Logger
}

// NewService creates a new Service. defaultCities is the selection used when
// a caller asks for "all" or passes no cities.
func NewService(catalog, geo Resolver, source ConditionsSource, store Store, defaultCities []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: catalog,
		geo:     geo,
		source:  source,
		store:   store,
		cities:  defaultCities,
		log:     logger,
	}
}

// Aggregate runs the pipeline for each requested city in order, one city at a
// time. A city that fails to resolve, fetch, or normalize is recorded as a
// Failure and skipped; it never aborts the remaining cities. An empty
// selection or the literal "all" expands to the default city set. Duplicate
// names collapse to one fetch so a batch holds at most one record per city.
// Aggregate returns ErrEmptyBatch when no city produced a record.
func (s *Service) Aggregate(ctx context.Context, names []string, mode Mode) (Batch, []Failure, error) {
	names = s.expandSelection(names)
	res := s.resolver(mode)

	batch := make(Batch, 0, len(names))
	var failures []Failure

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		rec, err := s.fetchOne(ctx, res, name)
		if err != nil {
			s.log.Warn("city skipped",
				zap.String("city", name),
				zap.String("resolver", res.Name()),
				zap.Error(err))
			failures = append(failures, Failure{City: name, Err: err})
			continue
		}

		batch = append(batch, rec)
	}

	if len(batch) == 0 {
		return nil, failures, fmt.Errorf("%w: none of the %d requested cities succeeded", ErrEmptyBatch, len(names))
	}
	return batch, failures, nil
}

func (s *Service) fetchOne(ctx context.Context, res Resolver, name string) (Record, error) {
	city, err := res.Resolve(ctx, name)
	if err != nil {
		return Record{}, err
	}

	raw, err := s.source.Current(ctx, city)
	if err != nil {
		return Record{}, err
	}

	return Normalize(city.Name, raw)
}

func (s *Service) resolver(mode Mode) Resolver {
	if mode == ModeAPI {
		return s.geo
	}
	return s.catalog
}

// expandSelection maps the "all" selector (or an empty selection) to the
// default city list and collapses duplicate names, first occurrence wins.
func (s *Service) expandSelection(names []string) []string {
	if len(names) == 0 || (len(names) == 1 && strings.EqualFold(names[0], "all")) {
		names = s.cities
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// PersistBatch delegates to the underlying store.
func (s *Service) PersistBatch(batch Batch) error {
	return s.store.WriteBatch(batch)
}

// LoadBatch delegates to the underlying store.
func (s *Service) LoadBatch() (Batch, error) {
	return s.store.ReadBatch()
}

// CSVPath reports where the store keeps the current batch.
func (s *Service) CSVPath() string {
	return s.store.Path()
}
