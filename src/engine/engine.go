package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"market-eye/src/analytics"
	"market-eye/src/anomaly"
	"market-eye/src/config"
	"market-eye/src/instrumentation"
	"market-eye/src/interfaces"
	"market-eye/src/layout"
	"market-eye/src/logger"
	"market-eye/src/models"
	"market-eye/src/timeseries"
	"market-eye/src/utils"
)

// -----------------------------------------------------------------------------
// MarketEngine: single entry point over the whole market state
// -----------------------------------------------------------------------------

const (
	intakeDepth = 1024
	alertDepth  = 64

	// Pair alert rule: decorrelated instruments moving far apart.
	pairCorrelationCeiling = 0.8
	pairSpreadFloor        = 1.2
)

// MarketEngine owns the instrument universe, the anomaly ring and the derived
// analytics. Event ingestion is serialized through an intake channel; reads
// take a copy under a read lock, so sources, pollers and renderers never see
// a half-applied update.
type MarketEngine struct {
	Name   string
	Logger *logger.Logger

	engineCfg models.MEngineConfig
	metrics   *instrumentation.Metrics
	publisher interfaces.IPublisher
	detector  *anomaly.Detector

	mu          sync.RWMutex
	instruments map[string]*InstrumentState
	order       []string // universe order, fixed at construction
	ring        *anomalyRing
	filters     anomaly.FilterSet

	focus        string
	sectorFilter string

	tickUp   float64
	tickDown float64

	health     models.MSourceHealth
	marketOpen bool

	account    *models.MAccount
	positions  []models.MPosition
	strategies []models.MStrategy
	equity     *timeseries.Buffer

	intake chan *models.MMarketEvent
	alerts chan models.MAlert
}

// -----------------------------------------------------------------------------

// NewMarketEngine builds the engine from the configured universe. publisher
// and metrics may be nil; both degrade to no-ops.
func NewMarketEngine(cfg *config.Config, lg *logger.Logger, publisher interfaces.IPublisher, metrics *instrumentation.Metrics) *MarketEngine {
	engine := &MarketEngine{
		Name:        cfg.Name,
		Logger:      lg,
		engineCfg:   cfg.Engine,
		metrics:     metrics,
		publisher:   publisher,
		detector:    anomaly.NewDetector(),
		instruments: make(map[string]*InstrumentState, len(cfg.Universe)),
		order:       make([]string, 0, len(cfg.Universe)),
		ring:        newAnomalyRing(cfg.Engine.AnomalyRing),
		filters:     anomaly.NewFilterSet(),
		health:      models.MSourceHealth{Mode: models.ModeConnecting},
		equity:      timeseries.NewBuffer(cfg.Engine.HistoryDepth),
		intake:      make(chan *models.MMarketEvent, intakeDepth),
		alerts:      make(chan models.MAlert, alertDepth),
	}
	for _, entry := range cfg.Universe {
		engine.instruments[entry.Symbol] = NewInstrumentState(entry, cfg.Engine.HistoryDepth)
		engine.order = append(engine.order, entry.Symbol)
	}
	lg.Info("%s : engine initialized with %d instruments", engine.Name, len(engine.order))
	return engine
}

// -----------------------------------------------------------------------------

// Run consumes the intake channel until the context is cancelled. All state
// mutation from events happens on this goroutine.
func (e *MarketEngine) Run(ctx context.Context) {
	e.Logger.Info("%s : engine event loop started", e.Name)
	for {
		select {
		case <-ctx.Done():
			e.Logger.Info("%s : engine event loop stopped", e.Name)
			return
		case event := <-e.intake:
			e.Apply(event)
		}
	}
}

// -----------------------------------------------------------------------------

// Enqueue hands an event to the engine's event loop without blocking the
// source. When the intake buffer is full the event is dropped and counted.
func (e *MarketEngine) Enqueue(event *models.MMarketEvent) {
	if event == nil {
		return
	}
	select {
	case e.intake <- event:
	default:
		e.metrics.EventDropped("intake_full")
		e.Logger.Warning("%s : intake buffer full, dropping %s event for '%s'", e.Name, event.Type, event.Symbol)
	}
}

// -----------------------------------------------------------------------------

// Apply folds one normalized event into engine state. Events for symbols
// outside the universe are dropped; applying the same trade twice converges
// to the same state (the second application reads a zero change).
func (e *MarketEngine) Apply(event *models.MMarketEvent) {
	if event == nil {
		return
	}
	switch event.Type {
	case models.EventTypeTrade:
		e.applyTrade(event)
	case models.EventTypeQuote:
		e.applyQuote(event)
	case models.EventTypeAnomaly:
		e.applyAnomaly(event)
	default:
		e.metrics.EventDropped("unknown_type")
		e.Logger.Debug("%s : dropping event with unknown type '%s'", e.Name, event.Type)
	}
}

// -----------------------------------------------------------------------------

func (e *MarketEngine) applyTrade(event *models.MMarketEvent) {
	if event.Price <= 0 || !utils.IsFinite(event.Price) {
		e.metrics.EventDropped("malformed_trade")
		e.Logger.Debug("%s : dropping malformed trade for '%s' (price=%v)", e.Name, event.Symbol, event.Price)
		return
	}

	at := event.At
	if at.IsZero() {
		at = time.Now()
	}

	e.mu.Lock()
	state, known := e.instruments[event.Symbol]
	if !known {
		e.mu.Unlock()
		e.metrics.EventDropped("unknown_symbol")
		e.Logger.Debug("%s : dropping trade for unknown symbol '%s'", e.Name, event.Symbol)
		return
	}

	strongBuyEdge := state.ApplyTrade(event)
	score := state.Score

	switch event.Side {
	case "B":
		e.tickUp++
	case "S":
		e.tickDown++
	}

	detected := e.detector.Observe(event.Symbol, event.Price, event.Size, at)
	for _, record := range detected {
		e.ring.push(record)
		e.metrics.AnomalyRecorded(string(record.Kind))
	}
	e.mu.Unlock()

	e.metrics.EventApplied(string(models.EventTypeTrade))
	if e.publisher != nil {
		e.publisher.OnMarketEvent(event)
	}

	if strongBuyEdge {
		e.Logger.Info("%s : SONAR PING on '%s', scored %d/100", e.Name, event.Symbol, score)
		e.emitAlert(models.MAlert{
			Kind:   models.AlertSignal,
			Symbol: event.Symbol,
			Detail: "Signal entered STRONG_BUY",
			Signal: models.SignalStrongBuy,
		})
	}
	for i := range detected {
		e.notifyAnomaly(&detected[i])
	}
}

// -----------------------------------------------------------------------------

func (e *MarketEngine) applyQuote(event *models.MMarketEvent) {
	e.mu.Lock()
	state, known := e.instruments[event.Symbol]
	if !known {
		e.mu.Unlock()
		e.metrics.EventDropped("unknown_symbol")
		e.Logger.Debug("%s : dropping quote for unknown symbol '%s'", e.Name, event.Symbol)
		return
	}
	state.ApplyQuote(event)
	e.mu.Unlock()

	e.metrics.EventApplied(string(models.EventTypeQuote))
	if e.publisher != nil {
		e.publisher.OnMarketEvent(event)
	}
}

// -----------------------------------------------------------------------------

func (e *MarketEngine) applyAnomaly(event *models.MMarketEvent) {
	e.mu.Lock()
	if _, known := e.instruments[event.Symbol]; !known {
		e.mu.Unlock()
		e.metrics.EventDropped("unknown_symbol")
		e.Logger.Debug("%s : dropping anomaly for unknown symbol '%s'", e.Name, event.Symbol)
		return
	}
	record := anomaly.Classify(event)
	e.ring.push(record)
	e.mu.Unlock()

	e.metrics.EventApplied(string(models.EventTypeAnomaly))
	e.metrics.AnomalyRecorded(string(record.Kind))
	if e.publisher != nil {
		e.publisher.OnMarketEvent(event)
	}
	e.notifyAnomaly(&record)
}

// -----------------------------------------------------------------------------

// notifyAnomaly forwards alert-worthy anomalies to the publisher and the
// alert side channel. Ring insertion already happened under the lock.
func (e *MarketEngine) notifyAnomaly(record *models.MAnomaly) {
	if !anomaly.AlertWorthy(record.Kind) {
		return
	}
	e.Logger.Info("%s : %s %s on '%s' (%s)", e.Name, record.Icon, record.Kind, record.Symbol, record.Detail)
	if e.publisher != nil {
		e.publisher.OnAlert(record)
	}
	e.emitAlert(models.MAlert{
		Kind:    models.AlertAnomaly,
		Symbol:  record.Symbol,
		Detail:  record.Detail,
		Anomaly: record,
	})
}

// -----------------------------------------------------------------------------

// emitAlert performs a non-blocking send; a slow or absent consumer never
// stalls ingestion.
func (e *MarketEngine) emitAlert(alert models.MAlert) {
	select {
	case e.alerts <- alert:
	default:
		e.Logger.Warning("%s : alert channel full, dropping %s alert for '%s'", e.Name, alert.Kind, alert.Symbol)
	}
}

// -----------------------------------------------------------------------------

// Alerts exposes the alert side channel. The engine never renders or plays
// notifications itself.
func (e *MarketEngine) Alerts() <-chan models.MAlert {
	return e.alerts
}

// -----------------------------------------------------------------------------

// Snapshot returns a consistent copy of the full market state. Everything in
// the returned value is detached from engine internals.
func (e *MarketEngine) Snapshot() models.MSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := models.MSnapshot{
		Instruments: make([]models.MInstrument, 0, len(e.order)),
		Health:      e.health,
		MarketOpen:  e.marketOpen,
		GeneratedAt: time.Now(),
	}

	advancers := 0
	decliners := 0
	for _, symbol := range e.order {
		state := e.instruments[symbol]
		snapshot.Instruments = append(snapshot.Instruments, state.view(e.engineCfg.ChartWindow))
		if state.ChangePct > 0 {
			advancers++
		} else if state.ChangePct < 0 {
			decliners++
		}
	}
	snapshot.Breadth = analytics.BreadthGauge(advancers, decliners, e.tickUp, e.tickDown)

	if e.account != nil {
		account := *e.account
		snapshot.Account = &account
	}
	if len(e.positions) > 0 {
		snapshot.Positions = append([]models.MPosition(nil), e.positions...)
	}
	if len(e.strategies) > 0 {
		snapshot.Strategies = append([]models.MStrategy(nil), e.strategies...)
	}

	equity := e.equity.Values()
	snapshot.Sharpe, snapshot.SharpeDefined = analytics.Sharpe(equity)
	snapshot.MaxDrawdown, snapshot.MaxDrawdownDefined = analytics.MaxDrawdown(equity)

	return snapshot
}

// -----------------------------------------------------------------------------

// Layout computes a treemap of the universe weighted by session volume.
// sector narrows the tile set; an empty sector falls back to the engine's
// sticky sector filter, and an empty filter means the whole universe.
func (e *MarketEngine) Layout(sector string, zoom, width, height float64) []models.MTile {
	e.mu.RLock()
	defer e.mu.RUnlock()

	effective := sector
	if effective == "" {
		effective = e.sectorFilter
	}

	items := make([]layout.Item, 0, len(e.order))
	for _, symbol := range e.order {
		state := e.instruments[symbol]
		if effective != "" && state.Sector != effective {
			continue
		}
		items = append(items, layout.Item{Symbol: state.Symbol, Weight: state.Volume})
	}
	return layout.Compute(items, width, height, zoom)
}

// -----------------------------------------------------------------------------

// Analytics runs the pair query for two instruments. Unknown symbols yield an
// undefined result. The alert flag requires a defined correlation below the
// decorrelation ceiling together with a wide change spread.
func (e *MarketEngine) Analytics(symbolA, symbolB string) models.MPairAnalytics {
	e.mu.RLock()
	defer e.mu.RUnlock()

	a, okA := e.instruments[symbolA]
	b, okB := e.instruments[symbolB]
	if !okA || !okB {
		return models.MPairAnalytics{}
	}

	result := models.MPairAnalytics{
		Spread: math.Abs(a.ChangePct - b.ChangePct),
	}
	result.Correlation, result.Defined = analytics.Correlation(
		a.History.WindowValues(e.engineCfg.CorrelationWindow),
		b.History.WindowValues(e.engineCfg.CorrelationWindow),
	)
	result.Alert = result.Defined &&
		result.Correlation < pairCorrelationCeiling &&
		result.Spread > pairSpreadFloor
	return result
}

// -----------------------------------------------------------------------------

// Anomalies returns the retained anomalies passing the active kind filter,
// newest first.
func (e *MarketEngine) Anomalies() []models.MAnomaly {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ring.list(e.filters)
}

// -----------------------------------------------------------------------------

// SetAnomalyFilter toggles a kind in the presentation filter. Storage is
// unaffected; re-enabling a kind brings its retained records back.
func (e *MarketEngine) SetAnomalyFilter(kind models.MAnomalyKind, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters.Set(kind, enabled)
}

// -----------------------------------------------------------------------------

// SetFocus records the focused symbol. An unknown symbol clears the focus.
func (e *MarketEngine) SetFocus(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, known := e.instruments[symbol]; !known {
		e.focus = ""
		return
	}
	e.focus = symbol
}

// Focus returns the focused symbol, empty when nothing is focused.
func (e *MarketEngine) Focus() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.focus
}

// -----------------------------------------------------------------------------

// SetSectorFilter sets the sticky sector filter used by Layout when the
// caller passes no sector. Empty clears it.
func (e *MarketEngine) SetSectorFilter(sector string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sectorFilter = sector
}

// SectorFilter returns the sticky sector filter.
func (e *MarketEngine) SectorFilter() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sectorFilter
}

// -----------------------------------------------------------------------------

// RenderTick decays the tick-direction counters toward zero. Called once per
// render pass so the breadth gauge drifts back to neutral between trades.
func (e *MarketEngine) RenderTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickUp = decay(e.tickUp, e.engineCfg.TickDecay)
	e.tickDown = decay(e.tickDown, e.engineCfg.TickDecay)
}

func decay(value, step float64) float64 {
	value -= step
	if value < 0 {
		return 0
	}
	return value
}

// -----------------------------------------------------------------------------

// SetHealth replaces the published source health. Owned by the failover
// controller.
func (e *MarketEngine) SetHealth(health models.MSourceHealth) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.health = health
}

// Health returns the current source health.
func (e *MarketEngine) Health() models.MSourceHealth {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.health
}

// -----------------------------------------------------------------------------

// SetMarketOpen records the market session state from the clock poll.
func (e *MarketEngine) SetMarketOpen(open bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.marketOpen = open
}

// -----------------------------------------------------------------------------
// REST collaborator state. Each setter replaces the previous answer wholesale.
// -----------------------------------------------------------------------------

// ApplyAccount stores the latest account snapshot and appends its equity to
// the portfolio statistics series.
func (e *MarketEngine) ApplyAccount(account *models.MAccount) {
	if account == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	copied := *account
	e.account = &copied
	if copied.AUM > 0 {
		e.equity.AppendValue(copied.AUM, time.Now())
	}
}

// ApplyPositions stores the latest position list.
func (e *MarketEngine) ApplyPositions(positions []models.MPosition) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positions = append(e.positions[:0:0], positions...)
}

// ApplyStrategies stores the latest strategy list.
func (e *MarketEngine) ApplyStrategies(strategies []models.MStrategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies = append(e.strategies[:0:0], strategies...)
}

// ApplyPortfolio replaces the equity series with a full portfolio history,
// oldest first.
func (e *MarketEngine) ApplyPortfolio(history *models.MPortfolioHistory) {
	if history == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, value := range history.Equity {
		at := time.Now()
		if i < len(history.Timestamp) {
			at = time.Unix(history.Timestamp[i], 0)
		}
		e.equity.AppendValue(value, at)
	}
}
