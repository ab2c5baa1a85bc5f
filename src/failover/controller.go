package failover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-eye/src/config"
	"market-eye/src/engine"
	"market-eye/src/instrumentation"
	"market-eye/src/interfaces"
	"market-eye/src/logger"
	"market-eye/src/models"
	"market-eye/src/restapi"
	"market-eye/src/serializers"
	"market-eye/src/sources"
)

// -----------------------------------------------------------------------------
// Failover controller: owns the source lifecycle
// -----------------------------------------------------------------------------

// Controller drives the source state machine: push stream when reachable,
// poll fallback while the stream is down, simulation until the first real
// data arrives. Once any real source delivers, simulation never resumes;
// total upstream loss reads CONNECTING, not SIMULATED.
type Controller struct {
	Name   string
	Logger *logger.Logger

	cfg     *config.Config
	engine  *engine.MarketEngine
	metrics *instrumentation.Metrics
	rest    *restapi.Client

	push interfaces.ISourceAdapter
	poll interfaces.ISourceAdapter
	sim  interfaces.ISourceAdapter

	// onModeChange is invoked outside the lock on every transition, used to
	// flip the gRPC health status.
	onModeChange func(models.MSourceMode)

	mu            sync.Mutex
	mode          models.MSourceMode
	failures      int
	lastEventAt   time.Time
	pushUp        bool
	pollUp        bool
	sawRealData   bool
	attemptedPush bool

	pushDown chan struct{}
	pollDown chan struct{}
}

// -----------------------------------------------------------------------------

// NewController wires the three adapters around the engine. rest may be nil
// when no backend is configured; the controller then runs simulation only.
func NewController(cfg *config.Config, lg *logger.Logger, eng *engine.MarketEngine, metrics *instrumentation.Metrics, onModeChange func(models.MSourceMode)) *Controller {
	controller := &Controller{
		Name:         cfg.Name,
		Logger:       lg,
		cfg:          cfg,
		engine:       eng,
		metrics:      metrics,
		onModeChange: onModeChange,
		mode:         models.ModeConnecting,
		pushDown:     make(chan struct{}, 1),
		pollDown:     make(chan struct{}, 1),
	}

	controller.sim = sources.NewSimSource(cfg.Universe, lg, cfg.Failover.SimTick(), controller.onEvent)

	if cfg.HasBackend() {
		controller.rest = restapi.NewClient(cfg.BaseAddress, lg, &cfg.Failover)
		serializer := serializers.NewJSONSerializer()
		controller.push = sources.NewPushSource(cfg.BaseAddress, lg, serializer, controller.onEvent, controller.onPushDown)
		controller.poll = sources.NewPollSource(controller.rest, lg, cfg.Failover.PollInterval(), controller.onEvent, controller.onPollDown)
	}

	return controller
}

// -----------------------------------------------------------------------------

// Start boots the state machine. Simulation begins immediately; the push and
// poll loops spin up only when a backend is configured.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.sim.Start(ctx); err != nil {
		return err
	}

	if c.rest == nil {
		c.Logger.Info("%s : no backend configured, running fully simulated", c.Name)
		c.transition(models.ModeSimulated)
		return nil
	}

	// Simulation is what feeds the engine until the first real event, so the
	// reported mode is SIMULATED from the start, not CONNECTING.
	c.transition(models.ModeSimulated)
	go c.runPushLoop(ctx)
	go c.runPollLoop(ctx)
	go c.runCollaboratorLoop(ctx)
	return nil
}

// -----------------------------------------------------------------------------

// Stop tears down whichever adapters are running.
func (c *Controller) Stop() {
	if c.push != nil {
		c.push.Stop()
	}
	if c.poll != nil {
		c.poll.Stop()
	}
	c.sim.Stop()
}

// -----------------------------------------------------------------------------

// Mode returns the current source mode.
func (c *Controller) Mode() models.MSourceMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// -----------------------------------------------------------------------------

// onEvent is the single funnel for every adapter. The first non-simulated
// event permanently retires the simulation.
func (c *Controller) onEvent(event *models.MMarketEvent) {
	c.mu.Lock()
	c.lastEventAt = event.At
	real := event.Source != c.sim.GetName()
	firstReal := real && !c.sawRealData
	if firstReal {
		c.sawRealData = true
	}
	c.mu.Unlock()

	if firstReal {
		c.Logger.Info("%s : first real event received from '%s', retiring simulation", c.Name, event.Source)
		c.sim.Stop()
		c.recompute()
	}

	c.engine.Enqueue(event)
	c.publishHealth()
}

// -----------------------------------------------------------------------------

func (c *Controller) onPushDown(name string, err error) {
	c.Logger.Warning("%s : push source down: %v", c.Name, err)
	select {
	case c.pushDown <- struct{}{}:
	default:
	}
}

func (c *Controller) onPollDown(name string, err error) {
	select {
	case c.pollDown <- struct{}{}:
	default:
	}
}

// -----------------------------------------------------------------------------

// runPushLoop keeps the push stream alive: connect, wait for the down signal,
// back off, retry. The poll loop fills the gaps.
func (c *Controller) runPushLoop(ctx context.Context) {
	backoff := c.cfg.Failover.ReconnectBackoff()

	for {
		if ctx.Err() != nil {
			return
		}

		err := c.push.Start(ctx)

		c.mu.Lock()
		c.attemptedPush = true
		if err == nil {
			c.pushUp = true
			c.failures = 0
		} else {
			c.failures++
		}
		c.mu.Unlock()

		if err == nil {
			c.recompute()
			if c.poll != nil {
				c.poll.Stop()
				c.nudge(c.pollDown)
			}

			select {
			case <-ctx.Done():
				c.push.Stop()
				return
			case <-c.pushDown:
			}

			c.mu.Lock()
			c.pushUp = false
			c.failures++
			c.mu.Unlock()
			c.push.Stop()
		} else {
			c.Logger.Warning("%s : push connect failed: %v", c.Name, err)
		}

		c.recompute()

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// -----------------------------------------------------------------------------

// runPollLoop keeps the poll fallback alive while the push stream is down.
func (c *Controller) runPollLoop(ctx context.Context) {
	backoff := c.cfg.Failover.ReconnectBackoff()

	for {
		if ctx.Err() != nil {
			return
		}

		c.mu.Lock()
		pushUp := c.pushUp
		attempted := c.attemptedPush
		c.mu.Unlock()

		// The stream gets the first shot; poll only covers its absence.
		if pushUp || !attempted {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}

		if err := c.poll.Start(ctx); err == nil {
			c.mu.Lock()
			c.pollUp = true
			c.mu.Unlock()
			c.recompute()

			select {
			case <-ctx.Done():
				c.poll.Stop()
				return
			case <-c.pollDown:
			}

			c.mu.Lock()
			c.pollUp = false
			c.failures++
			c.mu.Unlock()
			c.recompute()
		} else {
			c.mu.Lock()
			c.failures++
			c.mu.Unlock()
			c.Logger.Debug("%s : poll start failed: %v", c.Name, err)
			c.recompute()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// -----------------------------------------------------------------------------

// runCollaboratorLoop polls the slow-moving REST endpoints: market clock,
// account, positions and strategies. Failures degrade to last-known values.
func (c *Controller) runCollaboratorLoop(ctx context.Context) {
	// Seed the equity series once so portfolio statistics have history.
	if history, err := c.rest.GetPortfolioHistory(ctx); err == nil {
		c.engine.ApplyPortfolio(history)
	} else {
		c.Logger.Debug("%s : portfolio history unavailable: %v", c.Name, err)
	}

	ticker := time.NewTicker(c.cfg.Failover.ClockInterval())
	defer ticker.Stop()

	for {
		c.pullCollaborators(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) pullCollaborators(ctx context.Context) {
	if clock, err := c.rest.GetClock(ctx); err == nil {
		c.engine.SetMarketOpen(clock.IsOpen)
	} else {
		c.Logger.Debug("%s : clock poll failed: %v", c.Name, err)
	}
	if account, err := c.rest.GetAccount(ctx); err == nil {
		c.engine.ApplyAccount(account)
	} else {
		c.Logger.Debug("%s : account poll failed: %v", c.Name, err)
	}
	if positions, err := c.rest.GetPositions(ctx); err == nil {
		c.engine.ApplyPositions(positions)
	}
	if strategies, err := c.rest.GetStrategies(ctx); err == nil {
		c.engine.ApplyStrategies(strategies)
	}
	if connectivity, err := c.rest.GetConnectivity(ctx); err == nil {
		c.Logger.Debug("%s : upstream %s, ws latency %.0fms", c.Name, connectivity.Status, connectivity.WSLatencyMS)
	}
}

// -----------------------------------------------------------------------------

// InstrumentDetail fetches the on-demand focus payload for a symbol: borrow
// metadata plus recent bars. Bars degrade to empty when their endpoint fails;
// a missing backend is an error.
func (c *Controller) InstrumentDetail(ctx context.Context, symbol string) (*models.MAsset, []models.MBar, error) {
	if c.rest == nil {
		return nil, nil, fmt.Errorf("no backend configured")
	}
	asset, err := c.rest.GetAsset(ctx, symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("asset lookup for '%s' failed: %w", symbol, err)
	}
	bars, err := c.rest.GetBars(ctx, symbol, "5Min", 40)
	if err != nil {
		c.Logger.Debug("%s : bars for '%s' unavailable: %v", c.Name, symbol, err)
		bars = nil
	}
	return asset, bars, nil
}

// -----------------------------------------------------------------------------

// UpstreamLogs returns the recent upstream log lines for display.
func (c *Controller) UpstreamLogs(ctx context.Context) ([]string, error) {
	if c.rest == nil {
		return nil, fmt.Errorf("no backend configured")
	}
	return c.rest.GetLogs(ctx)
}

// -----------------------------------------------------------------------------

// recompute derives the mode from the source flags and publishes it when it
// changed. LIVE beats DEGRADED; with both sources down the mode depends on
// history: SIMULATED before any real data (the simulation is still feeding),
// CONNECTING afterwards, never SIMULATED again.
func (c *Controller) recompute() {
	c.mu.Lock()
	var next models.MSourceMode
	switch {
	case c.pushUp:
		next = models.ModeLive
	case c.pollUp:
		next = models.ModeDegraded
	case c.sawRealData:
		next = models.ModeConnecting
	default:
		next = models.ModeSimulated
	}
	c.mu.Unlock()

	c.transition(next)
}

// -----------------------------------------------------------------------------

// transition publishes a mode change to the engine, the metrics and the
// control plane. A no-op when the mode is unchanged.
func (c *Controller) transition(next models.MSourceMode) {
	c.mu.Lock()
	previous := c.mode
	if next == previous {
		c.mu.Unlock()
		c.publishHealth()
		return
	}
	c.mode = next
	c.mu.Unlock()

	c.Logger.Info("%s : source mode %s -> %s", c.Name, previous, next)
	c.metrics.ModeChanged(string(next))
	c.publishHealth()
	if c.onModeChange != nil {
		c.onModeChange(next)
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) publishHealth() {
	c.mu.Lock()
	health := models.MSourceHealth{
		Mode:                c.mode,
		Source:              c.activeSourceLocked(),
		LastEventAt:         c.lastEventAt,
		ConsecutiveFailures: c.failures,
	}
	c.mu.Unlock()

	c.engine.SetHealth(health)
}

// -----------------------------------------------------------------------------

func (c *Controller) activeSourceLocked() string {
	switch c.mode {
	case models.ModeLive:
		return c.push.GetName()
	case models.ModeDegraded:
		return c.poll.GetName()
	case models.ModeSimulated:
		return c.sim.GetName()
	default:
		return ""
	}
}

// -----------------------------------------------------------------------------

// nudge performs a non-blocking send used to wake a waiting loop.
func (c *Controller) nudge(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
