package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-eye/src/interfaces"
	"market-eye/src/logger"
	"market-eye/src/models"
	"market-eye/src/transports"
	"market-eye/src/utils"
)

// -----------------------------------------------------------------------------
// Push source: persistent WebSocket event stream
// -----------------------------------------------------------------------------

const streamPath = "/ws/eye"

// PushSource consumes the upstream WebSocket event stream. Each frame is one
// JSON-encoded market event. A dropped connection is reported upward; the
// adapter never retries on its own.
type PushSource struct {
	name       string
	logger     *logger.Logger
	serializer interfaces.ISerializer
	client     *transports.WebSocketClient
	onEvent    interfaces.EventCallback
	onDown     interfaces.DownCallback

	mu      sync.Mutex
	running bool
}

// -----------------------------------------------------------------------------

// NewPushSource creates a push adapter streaming from the given base address.
func NewPushSource(baseAddress string, lg *logger.Logger, serializer interfaces.ISerializer, onEvent interfaces.EventCallback, onDown interfaces.DownCallback) *PushSource {
	source := &PushSource{
		name:       "push",
		logger:     lg,
		serializer: serializer,
		onEvent:    onEvent,
		onDown:     onDown,
	}
	endpoint := utils.StreamURL(baseAddress, streamPath)
	source.client = transports.NewWebSocketClient(endpoint, lg, source.name, source.handleRawData, source.handleDown)
	return source
}

// -----------------------------------------------------------------------------

// GetName returns the adapter name.
func (p *PushSource) GetName() string {
	return p.name
}

// GetMode returns the mode this adapter represents while active.
func (p *PushSource) GetMode() models.MSourceMode {
	return models.ModeLive
}

// -----------------------------------------------------------------------------

// Start connects the stream. An unreachable upstream returns an error.
func (p *PushSource) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	if err := p.client.Connect(ctx); err != nil {
		return fmt.Errorf("push source failed to start: %w", err)
	}
	p.running = true
	return nil
}

// -----------------------------------------------------------------------------

// Stop tears the stream down. Safe to call more than once.
func (p *PushSource) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false
	return p.client.Disconnect()
}

// -----------------------------------------------------------------------------

// handleRawData parses one frame into a normalized event. Malformed frames
// are logged and skipped; the stream survives them.
func (p *PushSource) handleRawData(data []byte) {
	var event models.MMarketEvent
	if err := p.serializer.Unmarshal(data, &event); err != nil {
		p.logger.Warning("%s : skipping malformed frame: %v", p.name, err)
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	event.Source = p.name
	p.onEvent(&event)
}

// -----------------------------------------------------------------------------

func (p *PushSource) handleDown(name string, err error) {
	p.mu.Lock()
	running := p.running
	p.running = false
	p.mu.Unlock()

	// Release the dead connection before reporting upward, otherwise the
	// reader goroutines outlive the drop and pile up across reconnects.
	if disconnectErr := p.client.Disconnect(); disconnectErr != nil {
		p.logger.Debug("%s : disconnect after drop: %v", p.name, disconnectErr)
	}

	if running && p.onDown != nil {
		p.onDown(p.name, err)
	}
}
