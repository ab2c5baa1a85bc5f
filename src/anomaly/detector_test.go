package anomaly

import (
	"testing"
	"time"

	"market-eye/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func kinds(records []models.MAnomaly) []models.MAnomalyKind {
	out := make([]models.MAnomalyKind, len(records))
	for i, record := range records {
		out[i] = record.Kind
	}
	return out
}

// -----------------------------------------------------------------------------

func TestDetectorFirstTradeIsQuiet(t *testing.T) {
	detector := NewDetector()

	records := detector.Observe("NVDA", 100, 10, time.Now())
	assert.Empty(t, records)
}

// -----------------------------------------------------------------------------

func TestDetectorWhalePrint(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	detector.Observe("NVDA", 1000, 100, now)
	records := detector.Observe("NVDA", 1000, 1100, now.Add(time.Second))

	require.NotEmpty(t, records)
	assert.Contains(t, kinds(records), models.AnomalyWhaleAlert)
}

// -----------------------------------------------------------------------------

func TestDetectorExactWhaleThresholdDoesNotFire(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	detector.Observe("NVDA", 1000, 100, now)
	records := detector.Observe("NVDA", 1000, 1000, now.Add(time.Second))

	assert.NotContains(t, kinds(records), models.AnomalyWhaleAlert)
}

// -----------------------------------------------------------------------------

func TestDetectorVolumeSpike(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	for i := 0; i < 10; i++ {
		detector.Observe("NVDA", 100, 10, now.Add(time.Duration(i)*time.Second))
	}
	records := detector.Observe("NVDA", 100, 60, now.Add(11*time.Second))

	assert.Contains(t, kinds(records), models.AnomalyVolSpike)
}

// -----------------------------------------------------------------------------

func TestDetectorFlashSpikeAndCrash(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	detector.Observe("NVDA", 100, 1, now)
	spike := detector.Observe("NVDA", 103, 1, now.Add(10*time.Second))
	assert.Contains(t, kinds(spike), models.AnomalyFlashSpike)

	detector = NewDetector()
	detector.Observe("TSLA", 100, 1, now)
	crash := detector.Observe("TSLA", 97.5, 1, now.Add(10*time.Second))
	assert.Contains(t, kinds(crash), models.AnomalyFlashCrash)
}

// -----------------------------------------------------------------------------

func TestDetectorSmallMoveInsideWindowIsQuiet(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	detector.Observe("NVDA", 100, 1, now)
	records := detector.Observe("NVDA", 101, 1, now.Add(10*time.Second))

	assert.Empty(t, records)
}

// -----------------------------------------------------------------------------

func TestDetectorHaltResume(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	detector.Observe("NVDA", 100, 1, now)
	records := detector.Observe("NVDA", 100, 1, now.Add(121*time.Second))

	require.NotEmpty(t, records)
	assert.Equal(t, models.AnomalyHaltResume, records[0].Kind)
}

// -----------------------------------------------------------------------------

func TestDetectorGapBelowHaltThresholdIsQuiet(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	detector.Observe("NVDA", 100, 1, now)
	records := detector.Observe("NVDA", 100, 1, now.Add(119*time.Second))

	assert.NotContains(t, kinds(records), models.AnomalyHaltResume)
}

// -----------------------------------------------------------------------------

func TestDetectorSymbolsAreIndependent(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	detector.Observe("NVDA", 100, 1, now)
	// TSLA's first trade 121s later must not read as NVDA's halt gap.
	records := detector.Observe("TSLA", 200, 1, now.Add(121*time.Second))

	assert.Empty(t, records)
}

// -----------------------------------------------------------------------------

func TestDetectorRecordsCarryIconAndTimestamp(t *testing.T) {
	detector := NewDetector()
	now := time.Now()

	detector.Observe("NVDA", 1000, 100, now)
	records := detector.Observe("NVDA", 1000, 2000, now.Add(time.Second))

	require.NotEmpty(t, records)
	record := records[0]
	assert.Equal(t, "NVDA", record.Symbol)
	assert.NotEmpty(t, record.Icon)
	assert.Equal(t, now.Add(time.Second), record.ObservedAt)
}
