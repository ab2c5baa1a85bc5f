package interfaces

import (
	"context"

	"market-eye/src/models"
)

// -----------------------------------------------------------------------------

// EventCallback receives every normalized event an adapter produces.
// Adapters never hand out raw upstream payloads.
type EventCallback func(*models.MMarketEvent)

// -----------------------------------------------------------------------------

// DownCallback signals that an adapter lost its upstream and stopped producing.
// The failover controller owns the retry decision.
type DownCallback func(sourceName string, err error)

// -----------------------------------------------------------------------------

// ISourceAdapter defines the contract for a single event source: a persistent
// push connection, a periodic pull, or a local simulation. The failover
// controller holds exactly one active adapter at a time.
type ISourceAdapter interface {
	// GetName returns the adapter name for logging and health reporting.
	GetName() string

	// GetMode returns the source mode this adapter represents while active.
	GetMode() models.MSourceMode

	// Start begins producing events. It returns an error if the upstream is
	// unreachable; a healthy start keeps producing until Stop or ctx cancel.
	Start(ctx context.Context) error

	// Stop tears the adapter down. Safe to call more than once.
	Stop() error
}
