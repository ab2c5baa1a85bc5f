package models

import "time"

// -----------------------------------------------------------------------------

// MSnapshot is a consistent, immutable view of the full market state, safe to
// read at arbitrary frequency. Instruments keep the universe order.
type MSnapshot struct {
	Instruments []MInstrument `json:"instruments"`
	Health      MSourceHealth `json:"health"`
	Breadth     float64       `json:"breadth"` // blended gauge in [0,1]
	MarketOpen  bool          `json:"marketOpen"`

	// Optional extras sourced from REST collaborators; zero values mean the
	// collaborator never answered.
	Account    *MAccount   `json:"account,omitempty"`
	Positions  []MPosition `json:"positions,omitempty"`
	Strategies []MStrategy `json:"strategies,omitempty"`

	// Portfolio statistics over the equity history. Defined flags follow the
	// insufficient-data convention of src/analytics.
	Sharpe             float64 `json:"sharpe"`
	SharpeDefined      bool    `json:"sharpeDefined"`
	MaxDrawdown        float64 `json:"maxDrawdown"`
	MaxDrawdownDefined bool    `json:"maxDrawdownDefined"`

	GeneratedAt time.Time `json:"generatedAt"`
}
