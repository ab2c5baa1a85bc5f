package sources

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"market-eye/src/logger"
	"market-eye/src/models"
	"market-eye/src/serializers"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// pushTestServer serves one WebSocket connection, writes the given frames and
// then holds the connection open until hold is closed (or closes it right
// away when hold is nil).
func pushTestServer(t *testing.T, frames [][]byte, hold chan struct{}) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
		if hold != nil {
			<-hold
		}
	}))
	t.Cleanup(server.Close)
	return server.URL
}

// -----------------------------------------------------------------------------

func TestPushSourceDeliversEpochTimestampedTrades(t *testing.T) {
	frame := []byte(`{"type":"trade","symbol":"NVDA","price":920.0,"size":10,"ts":1716912000.5,"side":"B"}`)
	hold := make(chan struct{})
	defer close(hold)
	base := pushTestServer(t, [][]byte{frame}, hold)

	collector := &eventCollector{}
	lg := logger.NewLoggerWithWriter(io.Discard, "critical", "test")
	source := NewPushSource(base, lg, serializers.NewJSONSerializer(), collector.collect, nil)
	require.NoError(t, source.Start(context.Background()))
	defer source.Stop()

	require.Eventually(t, func() bool {
		return len(collector.snapshot()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	event := collector.snapshot()[0]
	assert.Equal(t, models.EventTypeTrade, event.Type)
	assert.Equal(t, "NVDA", event.Symbol)
	assert.Equal(t, 920.0, event.Price)
	assert.Equal(t, 10.0, event.Size)
	assert.Equal(t, "B", event.Side)
	assert.Equal(t, "push", event.Source)
	assert.True(t, event.At.Equal(time.Unix(1716912000, 500000000)))
}

// -----------------------------------------------------------------------------

func TestPushSourceSkipsMalformedFrames(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	base := pushTestServer(t, [][]byte{
		[]byte(`{not json`),
		[]byte(`{"type":"trade","symbol":"NVDA","price":921.0,"ts":1716912001.0}`),
	}, hold)

	collector := &eventCollector{}
	lg := logger.NewLoggerWithWriter(io.Discard, "critical", "test")
	source := NewPushSource(base, lg, serializers.NewJSONSerializer(), collector.collect, nil)
	require.NoError(t, source.Start(context.Background()))
	defer source.Stop()

	require.Eventually(t, func() bool {
		return len(collector.snapshot()) > 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 921.0, collector.snapshot()[0].Price)
}

// -----------------------------------------------------------------------------

func TestPushSourceReleasesConnectionOnDrop(t *testing.T) {
	base := pushTestServer(t, nil, nil)

	downed := make(chan struct{})
	lg := logger.NewLoggerWithWriter(io.Discard, "critical", "test")
	source := NewPushSource(base, lg, serializers.NewJSONSerializer(),
		func(*models.MMarketEvent) {},
		func(name string, err error) { close(downed) })
	require.NoError(t, source.Start(context.Background()))

	select {
	case <-downed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection drop was never reported")
	}

	// The transport must already be torn down when the drop is reported, so
	// reconnect cycles never accumulate orphaned reader goroutines.
	assert.False(t, source.client.IsRunning())
	assert.NoError(t, source.Stop())
}
