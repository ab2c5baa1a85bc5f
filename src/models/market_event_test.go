package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestMarketEventDecodesEpochTimestamp(t *testing.T) {
	frame := []byte(`{"type":"trade","symbol":"NVDA","price":920.0,"size":10,"ts":1716912000.5,"side":"B"}`)

	var event MMarketEvent
	require.NoError(t, json.Unmarshal(frame, &event))
	assert.Equal(t, EventTypeTrade, event.Type)
	assert.Equal(t, "NVDA", event.Symbol)
	assert.Equal(t, 920.0, event.Price)
	assert.Equal(t, 10.0, event.Size)
	assert.Equal(t, "B", event.Side)
	assert.True(t, event.At.Equal(time.Unix(1716912000, 500000000)))
}

// -----------------------------------------------------------------------------

func TestMarketEventWithoutTimestampStaysZero(t *testing.T) {
	frame := []byte(`{"type":"quote","symbol":"NVDA","bid":919.9,"ask":920.1}`)

	var event MMarketEvent
	require.NoError(t, json.Unmarshal(frame, &event))
	assert.True(t, event.At.IsZero())
}

// -----------------------------------------------------------------------------

func TestMarketEventTimestampRoundTrips(t *testing.T) {
	event := MMarketEvent{
		Type:   EventTypeTrade,
		Symbol: "NVDA",
		Price:  920,
		At:     time.Unix(1716912000, 500000000),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ts":1716912000.5`)

	var decoded MMarketEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.At.Equal(event.At))
}
