package anomaly

import (
	"testing"
	"time"

	"market-eye/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestParseKindKnownKinds(t *testing.T) {
	assert.Equal(t, models.AnomalyWhaleAlert, ParseKind("WHALE_ALERT"))
	assert.Equal(t, models.AnomalyVolSpike, ParseKind("VOL_SPIKE"))
	assert.Equal(t, models.AnomalyHaltResume, ParseKind("HALT_RESUME"))
}

// -----------------------------------------------------------------------------

func TestParseKindUnknownFallsBackToGeneric(t *testing.T) {
	assert.Equal(t, models.AnomalyGeneric, ParseKind("SOMETHING_NEW"))
	assert.Equal(t, models.AnomalyGeneric, ParseKind(""))
}

// -----------------------------------------------------------------------------

func TestClassifyMapsEventFields(t *testing.T) {
	at := time.Now().Add(-time.Minute)
	event := &models.MMarketEvent{
		Type:   models.EventTypeAnomaly,
		Symbol: "BTC/USD",
		At:     at,
		Price:  64000,
		Kind:   "WHALE_ALERT",
		Detail: "Whale 2400000",
	}

	record := Classify(event)
	assert.Equal(t, models.AnomalyWhaleAlert, record.Kind)
	assert.Equal(t, "BTC/USD", record.Symbol)
	assert.Equal(t, "Whale 2400000", record.Detail)
	assert.Equal(t, 64000.0, record.Price)
	assert.Equal(t, at, record.ObservedAt)
	assert.NotEmpty(t, record.Icon)
}

// -----------------------------------------------------------------------------

func TestClassifyStampsMissingTimestamp(t *testing.T) {
	record := Classify(&models.MMarketEvent{Symbol: "NVDA", Kind: "VOL_SPIKE"})
	assert.False(t, record.ObservedAt.IsZero())
}

// -----------------------------------------------------------------------------

func TestAlertWorthy(t *testing.T) {
	assert.True(t, AlertWorthy(models.AnomalyWhaleAlert))
	assert.True(t, AlertWorthy(models.AnomalyHaltResume))
	assert.False(t, AlertWorthy(models.AnomalyVolSpike))
	assert.False(t, AlertWorthy(models.AnomalyFlashCrash))
	assert.False(t, AlertWorthy(models.AnomalyGeneric))
}

// -----------------------------------------------------------------------------

func TestFilterSetDefaultsToEnabled(t *testing.T) {
	filters := NewFilterSet()
	require.True(t, filters.Enabled(models.AnomalyWhaleAlert))

	// Unknown kinds are enabled too.
	empty := FilterSet{}
	assert.True(t, empty.Enabled(models.AnomalyFlashSpike))
}

// -----------------------------------------------------------------------------

func TestFilterSetToggle(t *testing.T) {
	filters := NewFilterSet()

	filters.Set(models.AnomalyVolSpike, false)
	assert.False(t, filters.Enabled(models.AnomalyVolSpike))

	filters.Set(models.AnomalyVolSpike, true)
	assert.True(t, filters.Enabled(models.AnomalyVolSpike))
}
