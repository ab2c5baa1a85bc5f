package models

import "time"

// -----------------------------------------------------------------------------

// MSourceMode is the failover state of the event pipeline.
type MSourceMode string

const (
	ModeConnecting MSourceMode = "CONNECTING"
	ModeLive       MSourceMode = "LIVE"
	ModeDegraded   MSourceMode = "DEGRADED"
	ModeSimulated  MSourceMode = "SIMULATED"
)

// -----------------------------------------------------------------------------

// MSourceHealth represents the runtime status of the event pipeline.
// Owned by the failover controller; lifecycle spans the engine process.
type MSourceHealth struct {
	Mode                MSourceMode `json:"mode"`
	Source              string      `json:"source"`      // name of the active adapter
	LastEventAt         time.Time   `json:"lastEventAt"` // zero until the first event
	ConsecutiveFailures int         `json:"consecutiveFailures"`
}
