package models

// -----------------------------------------------------------------------------

// MSignal is the deterministic trade signal derived from score and change%.
type MSignal string

const (
	SignalStrongBuy MSignal = "STRONG_BUY"
	SignalBuy       MSignal = "BUY"
	SignalWait      MSignal = "WAIT"
	SignalSell      MSignal = "SELL"
)

// -----------------------------------------------------------------------------

// MAssetClass distinguishes instruments for simulation drift and display.
type MAssetClass string

const (
	AssetEquity MAssetClass = "Equity"
	AssetCrypto MAssetClass = "Crypto"
)

// -----------------------------------------------------------------------------

// MInstrument is the immutable per-symbol view handed out by snapshots.
// History and Quote are copies; mutating them does not affect engine state.
type MInstrument struct {
	Symbol     string      `json:"symbol"`
	Last       float64     `json:"last"`
	ChangePct  float64     `json:"chgPct"`
	Score      int         `json:"score"`
	VolMa      float64     `json:"volMa"`
	Signal     MSignal     `json:"signal"`
	Sector     string      `json:"sector"`
	AssetClass MAssetClass `json:"asset"`
	Volume     float64     `json:"volume"`
	History    []float64   `json:"history,omitempty"`
	Quote      *MQuote     `json:"quote,omitempty"`
}

// -----------------------------------------------------------------------------

// MTile is the ephemeral output of a treemap layout pass, keyed by symbol for
// hit-testing. Recomputed on every pass, never persisted.
type MTile struct {
	Symbol string  `json:"symbol"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// -----------------------------------------------------------------------------

// MPairAnalytics is the result of a two-instrument analytics query.
// Correlation is only meaningful when Defined is true; callers must render a
// neutral placeholder otherwise.
type MPairAnalytics struct {
	Correlation float64 `json:"correlation"`
	Defined     bool    `json:"defined"`
	Spread      float64 `json:"spread"` // |chgPctA - chgPctB| in percent points
	Alert       bool    `json:"alert"`
}
