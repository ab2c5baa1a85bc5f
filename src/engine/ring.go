package engine

import (
	"market-eye/src/anomaly"
	"market-eye/src/models"
)

// -----------------------------------------------------------------------------

// anomalyRing retains the newest anomalies, newest first. Records are never
// mutated after insertion; when full, the oldest falls off the end.
type anomalyRing struct {
	items    []models.MAnomaly
	capacity int
}

// -----------------------------------------------------------------------------

func newAnomalyRing(capacity int) *anomalyRing {
	if capacity < 1 {
		capacity = 1
	}
	return &anomalyRing{
		items:    make([]models.MAnomaly, 0, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// push prepends a record, evicting the oldest when at capacity.
func (r *anomalyRing) push(record models.MAnomaly) {
	if len(r.items) < r.capacity {
		r.items = append(r.items, models.MAnomaly{})
	}
	copy(r.items[1:], r.items)
	r.items[0] = record
}

// -----------------------------------------------------------------------------

// list returns a copy of the retained records passing the filter, newest
// first. The filter affects presentation only; storage is unfiltered.
func (r *anomalyRing) list(filters anomaly.FilterSet) []models.MAnomaly {
	out := make([]models.MAnomaly, 0, len(r.items))
	for _, record := range r.items {
		if filters.Enabled(record.Kind) {
			out = append(out, record)
		}
	}
	return out
}
