package engine

import (
	"fmt"
	"io"
	"testing"
	"time"

	"market-eye/src/config"
	"market-eye/src/logger"
	"market-eye/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	return logger.NewLoggerWithWriter(io.Discard, "critical", "test")
}

func defaultEngine(t *testing.T) *MarketEngine {
	t.Helper()
	return NewMarketEngine(config.DefaultConfig(), testLogger(), nil, nil)
}

// pairEngine builds a two-instrument engine with round seed prices so tests
// control the history series exactly.
func pairEngine(t *testing.T) *MarketEngine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Universe = []*models.MUniverseEntry{
		{Symbol: "AAA", Last: 100, Score: 50, Sector: "One", Asset: models.AssetEquity, Volume: 1000},
		{Symbol: "BBB", Last: 50, Score: 50, Sector: "Two", Asset: models.AssetEquity, Volume: 2000},
	}
	return NewMarketEngine(cfg, testLogger(), nil, nil)
}

func tradeEvent(symbol string, price float64) *models.MMarketEvent {
	return &models.MMarketEvent{
		Type:   models.EventTypeTrade,
		Symbol: symbol,
		At:     time.Now(),
		Price:  price,
		Size:   10,
	}
}

// -----------------------------------------------------------------------------

func TestApplyTradeUpdatesSnapshot(t *testing.T) {
	eng := defaultEngine(t)

	eng.Apply(tradeEvent("NVDA", 920.00))

	snapshot := eng.Snapshot()
	var nvda *models.MInstrument
	for i := range snapshot.Instruments {
		if snapshot.Instruments[i].Symbol == "NVDA" {
			nvda = &snapshot.Instruments[i]
		}
	}
	require.NotNil(t, nvda)
	assert.Equal(t, 920.00, nvda.Last)
	assert.InDelta(t, 1.9797, nvda.ChangePct, 0.001)
}

// -----------------------------------------------------------------------------

func TestApplyUnknownSymbolIsIgnored(t *testing.T) {
	eng := defaultEngine(t)
	before := eng.Snapshot()

	eng.Apply(tradeEvent("ZZZZ", 10))

	after := eng.Snapshot()
	assert.Equal(t, before.Instruments, after.Instruments)
}

// -----------------------------------------------------------------------------

func TestApplyMalformedTradeIsIgnored(t *testing.T) {
	eng := defaultEngine(t)

	eng.Apply(tradeEvent("NVDA", 0))
	eng.Apply(tradeEvent("NVDA", -5))

	snapshot := eng.Snapshot()
	for _, instrument := range snapshot.Instruments {
		if instrument.Symbol == "NVDA" {
			assert.Equal(t, 902.14, instrument.Last)
		}
	}
}

// -----------------------------------------------------------------------------

func TestSnapshotKeepsUniverseOrder(t *testing.T) {
	eng := defaultEngine(t)
	cfg := config.DefaultConfig()

	snapshot := eng.Snapshot()
	require.Len(t, snapshot.Instruments, len(cfg.Universe))
	for i, entry := range cfg.Universe {
		assert.Equal(t, entry.Symbol, snapshot.Instruments[i].Symbol)
	}
}

// -----------------------------------------------------------------------------

func TestSnapshotIsDetached(t *testing.T) {
	eng := defaultEngine(t)
	eng.Apply(tradeEvent("NVDA", 920.00))

	snapshot := eng.Snapshot()
	snapshot.Instruments[0].Last = -1
	snapshot.Instruments[0].History[0] = -1

	fresh := eng.Snapshot()
	assert.NotEqual(t, -1.0, fresh.Instruments[0].Last)
	assert.NotEqual(t, -1.0, fresh.Instruments[0].History[0])
}

// -----------------------------------------------------------------------------

func TestAnomalyRingCapacityAndOrder(t *testing.T) {
	eng := defaultEngine(t)

	for i := 1; i <= 21; i++ {
		eng.Apply(&models.MMarketEvent{
			Type:   models.EventTypeAnomaly,
			Symbol: "NVDA",
			Kind:   string(models.AnomalyVolSpike),
			Detail: fmt.Sprintf("spike %d", i),
		})
	}

	records := eng.Anomalies()
	require.Len(t, records, 20)
	assert.Equal(t, "spike 21", records[0].Detail)
	assert.Equal(t, "spike 2", records[19].Detail)
}

// -----------------------------------------------------------------------------

func TestAnomalyFilterAffectsPresentationOnly(t *testing.T) {
	eng := defaultEngine(t)

	eng.Apply(&models.MMarketEvent{Type: models.EventTypeAnomaly, Symbol: "NVDA", Kind: string(models.AnomalyVolSpike)})
	eng.Apply(&models.MMarketEvent{Type: models.EventTypeAnomaly, Symbol: "NVDA", Kind: string(models.AnomalyFlashCrash)})

	eng.SetAnomalyFilter(models.AnomalyVolSpike, false)
	records := eng.Anomalies()
	require.Len(t, records, 1)
	assert.Equal(t, models.AnomalyFlashCrash, records[0].Kind)

	// Re-enabling brings the stored record back.
	eng.SetAnomalyFilter(models.AnomalyVolSpike, true)
	assert.Len(t, eng.Anomalies(), 2)
}

// -----------------------------------------------------------------------------

func TestWhaleAnomalyReachesAlertChannel(t *testing.T) {
	eng := defaultEngine(t)

	eng.Apply(&models.MMarketEvent{
		Type:   models.EventTypeAnomaly,
		Symbol: "NVDA",
		Kind:   string(models.AnomalyWhaleAlert),
		Detail: "Whale 2400000",
	})

	select {
	case alert := <-eng.Alerts():
		assert.Equal(t, models.AlertAnomaly, alert.Kind)
		assert.Equal(t, "NVDA", alert.Symbol)
		require.NotNil(t, alert.Anomaly)
		assert.Equal(t, models.AnomalyWhaleAlert, alert.Anomaly.Kind)
	default:
		t.Fatal("expected an alert on the side channel")
	}
}

// -----------------------------------------------------------------------------

func TestStrongBuySignalReachesAlertChannel(t *testing.T) {
	eng := pairEngine(t)

	event := tradeEvent("AAA", 102)
	event.Score = 95
	eng.Apply(event)

	select {
	case alert := <-eng.Alerts():
		assert.Equal(t, models.AlertSignal, alert.Kind)
		assert.Equal(t, "AAA", alert.Symbol)
		assert.Equal(t, models.SignalStrongBuy, alert.Signal)
	default:
		t.Fatal("expected a signal alert on the side channel")
	}
}

// -----------------------------------------------------------------------------

func TestPairAnalyticsUndefinedWithShortHistory(t *testing.T) {
	eng := pairEngine(t)

	result := eng.Analytics("AAA", "BBB")
	assert.False(t, result.Defined)
	assert.False(t, result.Alert)
}

// -----------------------------------------------------------------------------

func TestPairAnalyticsUnknownSymbol(t *testing.T) {
	eng := pairEngine(t)

	result := eng.Analytics("AAA", "ZZZZ")
	assert.False(t, result.Defined)
	assert.Zero(t, result.Spread)
}

// -----------------------------------------------------------------------------

func TestPairAnalyticsAlertRule(t *testing.T) {
	eng := pairEngine(t)

	// AAA climbs steadily; BBB oscillates. The pair decorrelates while the
	// latest changes diverge past the spread floor.
	for _, price := range []float64{101, 102, 103, 104, 105} {
		eng.Apply(tradeEvent("AAA", price))
	}
	for _, price := range []float64{49, 50, 49, 50, 49} {
		eng.Apply(tradeEvent("BBB", price))
	}

	result := eng.Analytics("AAA", "BBB")
	require.True(t, result.Defined)
	assert.Less(t, result.Correlation, 0.8)
	assert.Greater(t, result.Spread, 1.2)
	assert.True(t, result.Alert)
}

// -----------------------------------------------------------------------------

func TestRenderTickDecaysBreadthCounters(t *testing.T) {
	eng := pairEngine(t)

	up := tradeEvent("AAA", 101)
	up.Side = "B"
	eng.Apply(up)

	// One buy tick, one advancer out of one mover: gauge = 0.6*1 + 0.4*1.
	first := eng.Snapshot().Breadth
	assert.InDelta(t, 1.0, first, 1e-9)

	// The tick ratio holds at 1.0 while any buy residual remains; only a
	// fully drained counter reads 0. Over-drain past the float residue.
	for i := 0; i < 30; i++ {
		eng.RenderTick()
	}
	drained := eng.Snapshot().Breadth
	assert.InDelta(t, 0.6, drained, 1e-9)
}

// -----------------------------------------------------------------------------

func TestLayoutHonorsSectorFilter(t *testing.T) {
	eng := pairEngine(t)

	all := eng.Layout("", 1.0, 800, 600)
	assert.Len(t, all, 2)

	one := eng.Layout("One", 1.0, 800, 600)
	require.Len(t, one, 1)
	assert.Equal(t, "AAA", one[0].Symbol)

	// Sticky filter applies when no explicit sector is passed.
	eng.SetSectorFilter("Two")
	sticky := eng.Layout("", 1.0, 800, 600)
	require.Len(t, sticky, 1)
	assert.Equal(t, "BBB", sticky[0].Symbol)
}

// -----------------------------------------------------------------------------

func TestFocusRequiresKnownSymbol(t *testing.T) {
	eng := pairEngine(t)

	eng.SetFocus("AAA")
	assert.Equal(t, "AAA", eng.Focus())

	eng.SetFocus("ZZZZ")
	assert.Empty(t, eng.Focus())
}

// -----------------------------------------------------------------------------

func TestSetHealthVisibleInSnapshot(t *testing.T) {
	eng := defaultEngine(t)

	health := models.MSourceHealth{Mode: models.ModeDegraded, Source: "poll", ConsecutiveFailures: 2}
	eng.SetHealth(health)

	assert.Equal(t, health, eng.Snapshot().Health)
}

// -----------------------------------------------------------------------------

func TestPortfolioStatisticsFromHistory(t *testing.T) {
	eng := defaultEngine(t)

	eng.ApplyPortfolio(&models.MPortfolioHistory{
		Equity: []float64{100000, 102000, 98000, 104000, 101000},
	})

	snapshot := eng.Snapshot()
	assert.True(t, snapshot.SharpeDefined)
	assert.True(t, snapshot.MaxDrawdownDefined)
	assert.Negative(t, snapshot.MaxDrawdown)
}

// -----------------------------------------------------------------------------

func TestApplyAccountCopies(t *testing.T) {
	eng := defaultEngine(t)

	account := &models.MAccount{AUM: 1_000_000, PnL: 1234}
	eng.ApplyAccount(account)
	account.PnL = -1

	snapshot := eng.Snapshot()
	require.NotNil(t, snapshot.Account)
	assert.Equal(t, 1234.0, snapshot.Account.PnL)
}
