package failover

import (
	"context"
	"io"
	"testing"
	"time"

	"market-eye/src/config"
	"market-eye/src/engine"
	"market-eye/src/logger"
	"market-eye/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	return logger.NewLoggerWithWriter(io.Discard, "critical", "test")
}

// -----------------------------------------------------------------------------

func TestControllerWithoutBackendRunsSimulated(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Failover.SimTickMS = 5

	eng := engine.NewMarketEngine(cfg, testLogger(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	var modes []models.MSourceMode
	controller := NewController(cfg, testLogger(), eng, nil, func(mode models.MSourceMode) {
		modes = append(modes, mode)
	})
	require.NoError(t, controller.Start(ctx))
	defer controller.Stop()

	assert.Equal(t, models.ModeSimulated, controller.Mode())
	require.NotEmpty(t, modes)
	assert.Equal(t, models.ModeSimulated, modes[len(modes)-1])

	// Simulated events must reach the engine.
	deadline := time.After(2 * time.Second)
	for {
		snapshot := eng.Snapshot()
		if !snapshot.Health.LastEventAt.IsZero() {
			assert.Equal(t, models.ModeSimulated, snapshot.Health.Mode)
			assert.Equal(t, "simulation", snapshot.Health.Source)
			break
		}
		select {
		case <-deadline:
			t.Fatal("no simulated event reached the engine")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// -----------------------------------------------------------------------------

func TestControllerStopIsIdempotent(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Failover.SimTickMS = 5

	eng := engine.NewMarketEngine(cfg, testLogger(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := NewController(cfg, testLogger(), eng, nil, nil)
	require.NoError(t, controller.Start(ctx))

	controller.Stop()
	controller.Stop()
}

// -----------------------------------------------------------------------------

func TestControllerOnDemandCallsRequireBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	eng := engine.NewMarketEngine(cfg, testLogger(), nil, nil)
	controller := NewController(cfg, testLogger(), eng, nil, nil)

	_, _, err := controller.InstrumentDetail(context.Background(), "NVDA")
	assert.Error(t, err)

	_, err = controller.UpstreamLogs(context.Background())
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestBackendStartupReportsSimulated(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BaseAddress = "http://127.0.0.1:9"
	cfg.Failover.SimTickMS = 5

	eng := engine.NewMarketEngine(cfg, testLogger(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Run(ctx)

	controller := NewController(cfg, testLogger(), eng, nil, nil)
	require.NoError(t, controller.Start(ctx))
	defer controller.Stop()

	// The simulation feeds the engine until real data arrives, and the mode
	// says so even while connect attempts run against the backend.
	assert.Equal(t, models.ModeSimulated, controller.Mode())

	// Failed attempts against an unreachable backend keep it simulated.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, models.ModeSimulated, controller.Mode())
}

// -----------------------------------------------------------------------------

func TestModeNeverReturnsToSimulatedAfterRealData(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BaseAddress = "http://127.0.0.1:9"

	eng := engine.NewMarketEngine(cfg, testLogger(), nil, nil)
	var modes []models.MSourceMode
	controller := NewController(cfg, testLogger(), eng, nil, func(mode models.MSourceMode) {
		modes = append(modes, mode)
	})

	// Stream connects and delivers real data.
	controller.mu.Lock()
	controller.attemptedPush = true
	controller.pushUp = true
	controller.sawRealData = true
	controller.mu.Unlock()
	controller.recompute()
	require.Equal(t, models.ModeLive, controller.Mode())

	// Stream drops with nothing covering: CONNECTING, not SIMULATED.
	controller.mu.Lock()
	controller.pushUp = false
	controller.mu.Unlock()
	controller.recompute()
	assert.Equal(t, models.ModeConnecting, controller.Mode())

	// Poll covers the gap.
	controller.mu.Lock()
	controller.pollUp = true
	controller.mu.Unlock()
	controller.recompute()
	assert.Equal(t, models.ModeDegraded, controller.Mode())

	// Total upstream loss after real data still never reads SIMULATED.
	controller.mu.Lock()
	controller.pollUp = false
	controller.mu.Unlock()
	controller.recompute()
	assert.Equal(t, models.ModeConnecting, controller.Mode())

	for _, mode := range modes {
		assert.NotEqual(t, models.ModeSimulated, mode)
	}
}

// -----------------------------------------------------------------------------

func TestControllerInitialModeIsConnecting(t *testing.T) {
	cfg := config.DefaultConfig()
	eng := engine.NewMarketEngine(cfg, testLogger(), nil, nil)

	controller := NewController(cfg, testLogger(), eng, nil, nil)
	assert.Equal(t, models.ModeConnecting, controller.Mode())
}
