package publishers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"market-eye/src/interfaces"
	"market-eye/src/logger"
	"market-eye/src/models"

	"github.com/nats-io/nats.go"
)

// -----------------------------------------------------------------------------
// NATSPublisher implements interfaces.IPublisher over a NATS connection
// -----------------------------------------------------------------------------

// NATSPublisher republishes applied events and alert-worthy anomalies for
// downstream consumers. Publishing is best effort; a broker outage degrades
// to logged errors and never blocks the engine.
type NATSPublisher struct {
	name   string
	config *models.MNATSConfig
	logger *logger.Logger

	useJetStream bool

	mu sync.RWMutex

	nc         *nats.Conn
	js         nats.JetStreamContext
	serializer interfaces.ISerializer

	connected bool
}

// -----------------------------------------------------------------------------

// NewNATSPublisher creates a new NATS publisher instance.
func NewNATSPublisher(config *models.MNATSConfig, lg *logger.Logger, serializer interfaces.ISerializer) interfaces.IPublisher {
	return &NATSPublisher{
		name:   config.ClientID,
		config: config,
		logger: lg,

		serializer: serializer,
	}
}

// -----------------------------------------------------------------------------

// OnMarketEvent publishes a normalized market event on
// <prefix>.events.<type>.<symbol>.
func (np *NATSPublisher) OnMarketEvent(event *models.MMarketEvent) {
	subject := fmt.Sprintf("events.%s.%s", event.Type, subjectToken(event.Symbol))
	np.publishObject(subject, event)
}

// -----------------------------------------------------------------------------

// OnAlert publishes an alert-worthy anomaly on
// <prefix>.alerts.<kind>.<symbol>.
func (np *NATSPublisher) OnAlert(anomaly *models.MAnomaly) {
	subject := fmt.Sprintf("alerts.%s.%s", anomaly.Kind, subjectToken(anomaly.Symbol))
	np.publishObject(subject, anomaly)
}

// -----------------------------------------------------------------------------

func (np *NATSPublisher) publishObject(subject string, obj any) {
	data, err := np.serializer.Marshal(obj)
	if err != nil {
		np.logger.Error("%s : failed to serialize payload for NATS subject %s: %v", np.name, subject, err)
		return
	}

	if np.useJetStream {
		err = np.PublishJetStream(subject, data)
	} else {
		err = np.Publish(subject, data)
	}
	if err != nil {
		np.logger.Error("%s : failed to publish to NATS subject %s: %v", np.name, subject, err)
	}
}

// -----------------------------------------------------------------------------

// Publish sends raw data to a NATS core subject.
func (np *NATSPublisher) Publish(subject string, data []byte) error {
	if !np.IsConnected() {
		return fmt.Errorf("nats client not connected")
	}
	// This is fire-and-forget; use PublishJetStream for persistence
	return np.nc.Publish(np.getSubject(subject), data)
}

// -----------------------------------------------------------------------------

// PublishJetStream sends raw data using JetStream.
func (np *NATSPublisher) PublishJetStream(subject string, data []byte) error {
	if !np.IsConnected() {
		return fmt.Errorf("nats client not connected")
	}
	if np.js == nil {
		return fmt.Errorf("jetstream is not initialized or enabled")
	}

	_, err := np.js.Publish(np.getSubject(subject), data)
	if err != nil {
		return fmt.Errorf("jetstream publish failed: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Connect establishes connection to the NATS server and sets up the
// JetStream context if configured.
func (np *NATSPublisher) Connect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc != nil && np.nc.IsConnected() {
		return nil
	}
	if len(np.config.Servers) == 0 {
		return fmt.Errorf("no nats servers configured")
	}

	opts := []nats.Option{
		nats.Name(np.config.ClientID),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),

		// Connection Event Handlers
		nats.RetryOnFailedConnect(true),
		nats.ClosedHandler(func(nc *nats.Conn) {
			np.logger.Error("%s : NATS connection closed unexpectedly", np.name)
			np.setConnected(false)
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			np.logger.Warning("%s : NATS disconnected, attempting reconnect: %v", np.name, err)
			np.setConnected(false)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			np.logger.Info("%s : NATS successfully reconnected to %s", np.name, nc.ConnectedUrl())
			np.setConnected(true)
		}),
	}

	var err error
	np.nc, err = nats.Connect(strings.Join(np.config.Servers, ","), opts...)
	if err != nil {
		return fmt.Errorf("nats connection failed: %w", err)
	}

	np.setConnected(true)
	np.logger.Info("%s : successfully connected to NATS at %s", np.name, np.nc.ConnectedUrl())

	if np.config.UseJetStream {
		np.js, err = np.nc.JetStream()
		if err != nil {
			np.logger.Warning("%s : failed to create JetStream context, falling back to core: %v", np.name, err)
			np.useJetStream = false
			return nil
		}
		np.useJetStream = true
		np.logger.Info("%s : publisher using NATS JetStream for persistent publishing", np.name)
	} else {
		np.useJetStream = false
		np.logger.Info("%s : publisher using NATS Core (fire-and-forget)", np.name)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Disconnect closes the NATS connection.
func (np *NATSPublisher) Disconnect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc == nil || np.nc.IsClosed() {
		return nil
	}

	np.nc.Close()
	np.setConnected(false)
	np.logger.Info("%s : NATS connection closed successfully", np.name)
	return nil
}

// -----------------------------------------------------------------------------

// IsConnected returns connection status
func (np *NATSPublisher) IsConnected() bool {
	np.mu.RLock()
	defer np.mu.RUnlock()
	return np.connected
}

// -----------------------------------------------------------------------------

// setConnected updates the connection status from NATS event handler
// goroutines.
func (np *NATSPublisher) setConnected(status bool) {
	np.connected = status
}

// -----------------------------------------------------------------------------

// getSubject prepends the configured subject prefix if it exists.
func (np *NATSPublisher) getSubject(subject string) string {
	if np.config.SubjectPrefix != "" {
		return fmt.Sprintf("%s.%s", np.config.SubjectPrefix, subject)
	}
	return subject
}

// -----------------------------------------------------------------------------

// subjectToken sanitizes a symbol for use as a NATS subject token.
func subjectToken(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}
