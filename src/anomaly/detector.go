package anomaly

import (
	"fmt"
	"time"

	"market-eye/src/models"
)

// -----------------------------------------------------------------------------
// Streaming anomaly detection over raw trades
// -----------------------------------------------------------------------------

const (
	haltGap        = 120 * time.Second
	whaleNotional  = 1_000_000.0
	volSpikeFactor = 5.0
	flashWindow    = 60 * time.Second
	flashThreshold = 2.0 // percent move inside the flash window

	// EWMA smoothing for the per-symbol average trade size.
	ewmaKeep  = 0.92
	ewmaBlend = 0.08
)

// -----------------------------------------------------------------------------

// Detector derives anomalies from the raw trade stream: whale prints, volume
// spikes, flash moves and halt/resume gaps. One instance serves the whole
// universe; the engine serializes all calls.
type Detector struct {
	lastTradeAt map[string]time.Time
	ewmaSize    map[string]float64
	windows     map[string][]models.MSample // trailing prices inside flashWindow
}

// -----------------------------------------------------------------------------

// NewDetector creates an empty Detector.
func NewDetector() *Detector {
	return &Detector{
		lastTradeAt: make(map[string]time.Time),
		ewmaSize:    make(map[string]float64),
		windows:     make(map[string][]models.MSample),
	}
}

// -----------------------------------------------------------------------------

// Observe feeds one trade and returns any anomalies it triggers, in detection
// order. The returned records are already classified with icon metadata.
func (d *Detector) Observe(symbol string, price, size float64, at time.Time) []models.MAnomaly {
	var out []models.MAnomaly

	if last, ok := d.lastTradeAt[symbol]; ok && at.Sub(last) > haltGap {
		out = append(out, d.record(models.AnomalyHaltResume, symbol, "Halt Resume", price, at))
	}
	d.lastTradeAt[symbol] = at

	changePct, hasChange := d.updateWindow(symbol, price, at)

	avgSize, seen := d.ewmaSize[symbol]
	if !seen {
		avgSize = size
	}
	d.ewmaSize[symbol] = avgSize*ewmaKeep + size*ewmaBlend

	notional := price * size
	if notional > whaleNotional {
		out = append(out, d.record(models.AnomalyWhaleAlert, symbol, fmt.Sprintf("Whale %.0f", notional), price, at))
	}
	if avgSize > 0 && size > avgSize*volSpikeFactor {
		out = append(out, d.record(models.AnomalyVolSpike, symbol, fmt.Sprintf("Vol Spike %.0f", size), price, at))
	}
	if hasChange && (changePct >= flashThreshold || changePct <= -flashThreshold) {
		kind := models.AnomalyFlashSpike
		if changePct < 0 {
			kind = models.AnomalyFlashCrash
		}
		out = append(out, d.record(kind, symbol, fmt.Sprintf("%+.2f%%", changePct), price, at))
	}
	return out
}

// -----------------------------------------------------------------------------

// updateWindow appends the price to the symbol's rolling window, evicts
// samples older than flashWindow and returns the percent change across the
// window. hasChange is false until at least two samples remain.
func (d *Detector) updateWindow(symbol string, price float64, at time.Time) (float64, bool) {
	window := append(d.windows[symbol], models.MSample{Value: price, At: at})
	cutoff := at.Add(-flashWindow)
	trim := 0
	for trim < len(window) && window[trim].At.Before(cutoff) {
		trim++
	}
	window = window[trim:]
	d.windows[symbol] = window

	if len(window) < 2 {
		return 0, false
	}
	start := window[0].Value
	if start == 0 {
		return 0, true
	}
	return (price - start) / start * 100, true
}

// -----------------------------------------------------------------------------

func (d *Detector) record(kind models.MAnomalyKind, symbol, detail string, price float64, at time.Time) models.MAnomaly {
	return models.MAnomaly{
		Kind:       kind,
		Symbol:     symbol,
		Detail:     detail,
		Price:      price,
		Icon:       icons[kind],
		ObservedAt: at,
	}
}
