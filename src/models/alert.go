package models

// -----------------------------------------------------------------------------

// MAlertKind distinguishes the two alert-worthy edge conditions the engine
// surfaces on its side channel.
type MAlertKind string

const (
	// AlertAnomaly wraps an alert-worthy anomaly (whale print, halt/resume).
	AlertAnomaly MAlertKind = "ANOMALY"

	// AlertSignal fires on a signal transition into STRONG_BUY.
	AlertSignal MAlertKind = "SIGNAL"
)

// -----------------------------------------------------------------------------

// MAlert is one entry of the observable alert stream. The engine never
// performs the audio/visual notification itself; the rendering layer
// subscribes and decides how to present it.
type MAlert struct {
	Kind    MAlertKind `json:"kind"`
	Symbol  string     `json:"symbol"`
	Detail  string     `json:"detail"`
	Signal  MSignal    `json:"signal,omitempty"`
	Anomaly *MAnomaly  `json:"anomaly,omitempty"`
}
