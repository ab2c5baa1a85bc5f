package models

import "time"

// -----------------------------------------------------------------------------

// MAnomalyKind identifies the category of a market anomaly.
type MAnomalyKind string

const (
	AnomalyWhaleAlert MAnomalyKind = "WHALE_ALERT"
	AnomalyVolSpike   MAnomalyKind = "VOL_SPIKE"
	AnomalyFlashSpike MAnomalyKind = "FLASH_SPIKE"
	AnomalyFlashCrash MAnomalyKind = "FLASH_CRASH"
	AnomalyHaltResume MAnomalyKind = "HALT_RESUME"

	// AnomalyGeneric is the fallback category for upstream kinds this engine
	// does not recognize.
	AnomalyGeneric MAnomalyKind = "ANOMALY"
)

// -----------------------------------------------------------------------------

// MAnomaly is a typed market anomaly. Immutable after creation; retained in a
// bounded ring, newest first.
type MAnomaly struct {
	Kind       MAnomalyKind `json:"kind"`
	Symbol     string       `json:"symbol"`
	Detail     string       `json:"detail"`
	Price      float64      `json:"price"`
	Icon       string       `json:"icon"`
	ObservedAt time.Time    `json:"observedAt"`
}
