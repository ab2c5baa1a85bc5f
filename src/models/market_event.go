package models

import (
	"encoding/json"
	"math"
	"time"
)

// -----------------------------------------------------------------------------

// MMarketEvent represents a standardized market event from any source.
// This single struct handles multiple event types (Trade, Quote, Anomaly)
// by utilizing omitempty on type-specific fields.
//
// On the wire the timestamp travels as "ts", a fractional unix epoch in
// seconds; the custom JSON methods below map it to At.
type MMarketEvent struct {
	// Common Fields
	Type   MEventType `json:"type"`
	Symbol string     `json:"symbol"`
	At     time.Time  `json:"-"`
	Source string     `json:"source,omitempty"`

	// Trade Fields (Used when Type == EventTypeTrade)
	Price float64 `json:"price,omitempty"`
	Size  float64 `json:"size,omitempty"`
	Side  string  `json:"side,omitempty"` // "B" or "S"

	// Optional trade enrichment. The poll source delivers full market rows
	// (score, volume-ratio, session volume); the push source delivers price only.
	Score  int     `json:"score,omitempty"`
	VolMa  float64 `json:"volMa,omitempty"`
	Volume float64 `json:"volume,omitempty"`

	// Quote Fields (Used when Type == EventTypeQuote - for Bid/Ask)
	Bid       float64 `json:"bid,omitempty"`
	Ask       float64 `json:"ask,omitempty"`
	BidSize   float64 `json:"bidSize,omitempty"`
	AskSize   float64 `json:"askSize,omitempty"`
	Imbalance float64 `json:"imbalance,omitempty"`

	// Anomaly Fields (Used when Type == EventTypeAnomaly)
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// -----------------------------------------------------------------------------

// UnmarshalJSON decodes the numeric epoch "ts" field into At. A missing or
// zero ts leaves At zero so the receiver can stamp arrival time.
func (e *MMarketEvent) UnmarshalJSON(data []byte) error {
	type alias MMarketEvent
	aux := struct {
		*alias
		Ts float64 `json:"ts"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Ts != 0 {
		sec, frac := math.Modf(aux.Ts)
		e.At = time.Unix(int64(sec), int64(math.Round(frac*float64(time.Second))))
	}
	return nil
}

// -----------------------------------------------------------------------------

// MarshalJSON encodes At as the numeric epoch "ts" field.
func (e MMarketEvent) MarshalJSON() ([]byte, error) {
	type alias MMarketEvent
	aux := struct {
		alias
		Ts float64 `json:"ts,omitempty"`
	}{alias: alias(e)}
	if !e.At.IsZero() {
		aux.Ts = float64(e.At.Unix()) + float64(e.At.Nanosecond())/float64(time.Second)
	}
	return json.Marshal(aux)
}

// -----------------------------------------------------------------------------

// MEventType defines the type of market event
type MEventType string

const (
	EventTypeTrade   MEventType = "trade"
	EventTypeQuote   MEventType = "quote"
	EventTypeAnomaly MEventType = "anomaly"
)

// -----------------------------------------------------------------------------

// MQuote is the top-of-book snapshot for an instrument. Each update replaces
// the previous quote wholesale; partial fields are never merged.
type MQuote struct {
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	BidSize   float64 `json:"bidSize"`
	AskSize   float64 `json:"askSize"`
	Imbalance float64 `json:"imbalance"` // bidSize/(bidSize+askSize) in [0,1]
}

// -----------------------------------------------------------------------------

// MSample is a single scalar observation, immutable once appended.
type MSample struct {
	Value float64   `json:"value"`
	At    time.Time `json:"at"`
}
