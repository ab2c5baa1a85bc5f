package transports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-eye/src/interfaces"
	"market-eye/src/logger"
	"market-eye/src/utils"

	"github.com/gorilla/websocket"
)

var _ interfaces.IConnectionClient = (*WebSocketClient)(nil)

// -----------------------------------------------------------------------------

// WebSocketClient implements IConnectionClient using Gorilla WebSocket. It
// does not reconnect on its own: a read failure tears the connection down and
// reports it through onDown, leaving the retry policy to the failover
// controller.
type WebSocketClient struct {
	conn         *websocket.Conn
	name         string
	endpoint     string
	logger       *logger.Logger
	isRunning    bool
	mu           sync.RWMutex
	recvMsgChann chan []byte
	errChann     chan error
	done         chan struct{}
	onRawData    func([]byte)
	onDown       func(name string, err error)
}

// -----------------------------------------------------------------------------

// NewWebSocketClient creates a new WebSocket client for the given endpoint.
func NewWebSocketClient(endpoint string, lg *logger.Logger, name string, onRawData func([]byte), onDown func(name string, err error)) *WebSocketClient {
	return &WebSocketClient{
		name:         name,
		endpoint:     endpoint,
		logger:       lg,
		isRunning:    false,
		recvMsgChann: make(chan []byte, 1000),
		errChann:     make(chan error, 10),
		done:         make(chan struct{}),
		onRawData:    onRawData,
		onDown:       onDown,
	}
}

// -----------------------------------------------------------------------------

// Connect establishes the WebSocket connection and starts processing.
func (w *WebSocketClient) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		w.logger.Error("%s : failed to connect to %s: %v", w.name, w.endpoint, err)
		return fmt.Errorf("failed to connect to %s: %w", w.endpoint, err)
	}

	// Recreate channels for new connection
	w.recvMsgChann = make(chan []byte, 1000)
	w.errChann = make(chan error, 10)
	w.done = make(chan struct{})

	w.conn = conn
	w.isRunning = true

	w.logger.Info("%s : WebSocket connected to %s", w.name, utils.MaskAPIKey(w.endpoint))

	go w.ReceiveMessage(ctx)
	go w.ProcessIncomingMessage(ctx)
	go w.processErrors(ctx)

	return nil
}

// -----------------------------------------------------------------------------

// Disconnect closes the connection.
func (w *WebSocketClient) Disconnect() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return nil
	}

	w.isRunning = false
	close(w.done)
	close(w.recvMsgChann)

	if w.conn != nil {
		err := w.conn.Close()
		w.conn = nil
		if err != nil {
			return fmt.Errorf("failed to close connection: %s: %w", w.endpoint, err)
		}
	}

	w.logger.Info("%s : WebSocket disconnected from %s", w.name, w.endpoint)
	return nil
}

// -----------------------------------------------------------------------------

// GetName returns the client name
func (w *WebSocketClient) GetName() string {
	return w.name
}

// -----------------------------------------------------------------------------

// GetType returns the transport type
func (w *WebSocketClient) GetType() string {
	return "websocket"
}

// -----------------------------------------------------------------------------

// IsRunning returns the connection status
func (w *WebSocketClient) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isRunning
}

// -----------------------------------------------------------------------------

// SendMessage sends a message to the WebSocket.
func (w *WebSocketClient) SendMessage(data []byte) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.conn == nil {
		return fmt.Errorf("connection is nil")
	}

	err := w.conn.WriteMessage(websocket.TextMessage, data)
	if err != nil {
		return fmt.Errorf("failed to send byte message: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ReceiveMessage reads frames until the connection fails or shuts down. The
// first read error after a live connection is reported through onDown.
func (w *WebSocketClient) ReceiveMessage(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		default:
			if !w.IsRunning() {
				return
			}

			messageType, message, err := w.conn.ReadMessage()
			if err != nil {
				// Check if we are shutting down
				select {
				case <-w.done:
					return
				default:
				}

				w.errChann <- fmt.Errorf("read message error: %w", err)
				if w.onDown != nil {
					w.onDown(w.name, err)
				}
				return
			}

			if messageType == websocket.TextMessage {
				select {
				case w.recvMsgChann <- message:
				case <-ctx.Done():
					return
				case <-w.done:
					return
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

// ProcessIncomingMessage forwards received frames to the onRawData callback.
func (w *WebSocketClient) ProcessIncomingMessage(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case byteMessage, ok := <-w.recvMsgChann:
			if !ok {
				return
			}
			w.onRawData(byteMessage)
		}
	}
}

// -----------------------------------------------------------------------------

// processErrors logs incoming errors from the channel.
func (w *WebSocketClient) processErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case err := <-w.errChann:
			w.logger.Error("%s : websocket error: %v", w.name, err)
		}
	}
}
