package anomaly

import (
	"time"

	"market-eye/src/models"
)

// -----------------------------------------------------------------------------
// Stateless event-to-anomaly classification
// -----------------------------------------------------------------------------

var icons = map[models.MAnomalyKind]string{
	models.AnomalyWhaleAlert: "🐋",
	models.AnomalyVolSpike:   "🔥",
	models.AnomalyFlashSpike: "⚡",
	models.AnomalyFlashCrash: "🧊",
	models.AnomalyHaltResume: "🚀",
	models.AnomalyGeneric:    "⚡",
}

// -----------------------------------------------------------------------------

// ParseKind maps an upstream kind string to a known anomaly kind. Unknown
// kinds fall back to the generic category rather than being dropped.
func ParseKind(kind string) models.MAnomalyKind {
	switch models.MAnomalyKind(kind) {
	case models.AnomalyWhaleAlert,
		models.AnomalyVolSpike,
		models.AnomalyFlashSpike,
		models.AnomalyFlashCrash,
		models.AnomalyHaltResume:
		return models.MAnomalyKind(kind)
	default:
		return models.AnomalyGeneric
	}
}

// -----------------------------------------------------------------------------

// Classify turns a raw anomaly event into a typed anomaly record. The mapping
// is 1:1 with no inference; only the kind string is interpreted.
func Classify(event *models.MMarketEvent) models.MAnomaly {
	kind := ParseKind(event.Kind)
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}
	return models.MAnomaly{
		Kind:       kind,
		Symbol:     event.Symbol,
		Detail:     event.Detail,
		Price:      event.Price,
		Icon:       icons[kind],
		ObservedAt: at,
	}
}

// -----------------------------------------------------------------------------

// AlertWorthy reports whether an anomaly kind triggers the external
// notification side channel in addition to the anomaly ring.
func AlertWorthy(kind models.MAnomalyKind) bool {
	return kind == models.AnomalyWhaleAlert || kind == models.AnomalyHaltResume
}

// -----------------------------------------------------------------------------

// FilterSet is the per-kind presentation filter. Filtering affects only what
// callers see; the anomaly ring stores everything regardless.
type FilterSet map[models.MAnomalyKind]bool

// NewFilterSet returns a filter with every known kind enabled.
func NewFilterSet() FilterSet {
	return FilterSet{
		models.AnomalyWhaleAlert: true,
		models.AnomalyVolSpike:   true,
		models.AnomalyFlashSpike: true,
		models.AnomalyFlashCrash: true,
		models.AnomalyHaltResume: true,
		models.AnomalyGeneric:    true,
	}
}

// Enabled reports whether a kind passes the filter. Kinds never configured
// default to enabled.
func (f FilterSet) Enabled(kind models.MAnomalyKind) bool {
	enabled, ok := f[kind]
	return !ok || enabled
}

// Set enables or disables a kind.
func (f FilterSet) Set(kind models.MAnomalyKind, enabled bool) {
	f[kind] = enabled
}
