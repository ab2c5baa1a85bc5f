package sources

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"market-eye/src/config"
	"market-eye/src/logger"
	"market-eye/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

type eventCollector struct {
	mu     sync.Mutex
	events []*models.MMarketEvent
}

func (c *eventCollector) collect(event *models.MMarketEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *eventCollector) snapshot() []*models.MMarketEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*models.MMarketEvent(nil), c.events...)
}

// -----------------------------------------------------------------------------

func TestSimSourceEmitsTradesForWholeUniverse(t *testing.T) {
	universe := config.DefaultUniverse()
	collector := &eventCollector{}
	lg := logger.NewLoggerWithWriter(io.Discard, "critical", "test")

	sim := NewSimSource(universe, lg, 5*time.Millisecond, collector.collect)
	require.NoError(t, sim.Start(context.Background()))
	defer sim.Stop()

	// Wait for at least one full tick across the universe.
	deadline := time.After(2 * time.Second)
	for {
		if len(collector.snapshot()) >= len(universe) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("simulation produced no full tick in time")
		case <-time.After(5 * time.Millisecond):
		}
	}

	seen := make(map[string]bool)
	for _, event := range collector.snapshot() {
		if event.Type != models.EventTypeTrade {
			continue
		}
		seen[event.Symbol] = true
		assert.Positive(t, event.Price)
		assert.GreaterOrEqual(t, event.Size, 20.0)
		assert.Contains(t, []string{"B", "S"}, event.Side)
		assert.Equal(t, "simulation", event.Source)
	}
	for _, entry := range universe {
		assert.True(t, seen[entry.Symbol], "no trade for %s", entry.Symbol)
	}
}

// -----------------------------------------------------------------------------

func TestSimSourcePricesStayNearSeed(t *testing.T) {
	universe := config.DefaultUniverse()
	collector := &eventCollector{}
	lg := logger.NewLoggerWithWriter(io.Discard, "critical", "test")

	sim := NewSimSource(universe, lg, time.Millisecond, collector.collect)
	require.NoError(t, sim.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, sim.Stop())

	seeds := make(map[string]float64)
	for _, entry := range universe {
		seeds[entry.Symbol] = entry.Last
	}
	for _, event := range collector.snapshot() {
		if event.Type != models.EventTypeTrade {
			continue
		}
		seed := seeds[event.Symbol]
		// A 0.6% max step cannot halve or double a price this quickly.
		assert.Greater(t, event.Price, seed*0.5)
		assert.Less(t, event.Price, seed*2.0)
	}
}

// -----------------------------------------------------------------------------

func TestSimSourceStopIsIdempotent(t *testing.T) {
	universe := config.DefaultUniverse()
	lg := logger.NewLoggerWithWriter(io.Discard, "critical", "test")

	sim := NewSimSource(universe, lg, time.Millisecond, func(*models.MMarketEvent) {})
	require.NoError(t, sim.Start(context.Background()))
	require.NoError(t, sim.Stop())
	require.NoError(t, sim.Stop())
}

// -----------------------------------------------------------------------------

func TestSimSourceRequiresUniverse(t *testing.T) {
	lg := logger.NewLoggerWithWriter(io.Discard, "critical", "test")
	sim := NewSimSource(nil, lg, time.Millisecond, func(*models.MMarketEvent) {})

	assert.Error(t, sim.Start(context.Background()))
}

// -----------------------------------------------------------------------------

func TestSimSourceModeAndName(t *testing.T) {
	lg := logger.NewLoggerWithWriter(io.Discard, "critical", "test")
	sim := NewSimSource(config.DefaultUniverse(), lg, time.Second, func(*models.MMarketEvent) {})

	assert.Equal(t, "simulation", sim.GetName())
	assert.Equal(t, models.ModeSimulated, sim.GetMode())
}
