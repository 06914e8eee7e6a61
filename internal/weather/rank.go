package weather

import "sort"

// Metric identifies a sortable numeric field of a Record.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricWindSpeed   Metric = "wind_speed"
)

// Value extracts the metric's field from a record.
func (m Metric) Value(r Record) float64 {
	switch m {
	case MetricWindSpeed:
		return r.WindSpeed
	default:
		return r.Temperature
	}
}

// Rank returns a reordered copy of the batch: metric descending, ties broken
// by city name ascending for determinism. A limit above zero truncates the
// result to the first limit records. The source batch is never mutated.
func Rank(batch Batch, metric Metric, limit int) Batch {
	return rankBy(batch, metric, false, limit)
}

// RankAscending is Rank with the metric order reversed. The city-name
// tie-break stays ascending.
func RankAscending(batch Batch, metric Metric, limit int) Batch {
	return rankBy(batch, metric, true, limit)
}

func rankBy(batch Batch, metric Metric, ascending bool, limit int) Batch {
	ranked := make(Batch, len(batch))
	copy(ranked, batch)

	sort.SliceStable(ranked, func(i, j int) bool {
		vi, vj := metric.Value(ranked[i]), metric.Value(ranked[j])
		if vi == vj {
			return ranked[i].City < ranked[j].City
		}
		if ascending {
			return vi < vj
		}
		return vi > vj
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}
