package interfaces

import (
	"context"
)

// -----------------------------------------------------------------------------

// IConnectionClient defines the interface for streaming transport connections.
// The raw-data callback is passed during client initialization.
type IConnectionClient interface {
	// Connect dials the upstream and starts the receive loop.
	Connect(ctx context.Context) error

	// Disconnect closes the connection
	Disconnect() error

	// IsRunning returns the connection status
	IsRunning() bool

	// GetName returns the client name
	GetName() string

	// GetType returns the transport type
	GetType() string

	// Send a message regarding protocol and transport
	SendMessage([]byte) error
}
