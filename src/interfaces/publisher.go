package interfaces

import "market-eye/src/models"

// -----------------------------------------------------------------------------

// IPublisher defines the interface for republishing engine output on a
// message bus for downstream consumers.
type IPublisher interface {
	// OnMarketEvent publishes a normalized market event.
	OnMarketEvent(event *models.MMarketEvent)

	// OnAlert publishes an alert-worthy anomaly on the side channel.
	OnAlert(anomaly *models.MAnomaly)

	// Connect establishes connection to the message broker
	Connect() error

	// Disconnect closes the connection to the message broker
	Disconnect() error

	// IsConnected returns the current connection status
	IsConnected() bool
}
