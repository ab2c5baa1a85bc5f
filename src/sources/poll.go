package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"market-eye/src/interfaces"
	"market-eye/src/logger"
	"market-eye/src/models"
	"market-eye/src/restapi"
)

// -----------------------------------------------------------------------------
// Poll source: periodic REST universe pulls
// -----------------------------------------------------------------------------

// PollSource pulls the full market snapshot on a fixed cadence and converts
// each row into an enriched trade event. It is the fallback while the push
// stream is down; a failed pull is reported upward and stops the adapter.
type PollSource struct {
	name     string
	logger   *logger.Logger
	client   *restapi.Client
	interval time.Duration
	onEvent  interfaces.EventCallback
	onDown   interfaces.DownCallback

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// -----------------------------------------------------------------------------

// NewPollSource creates a poll adapter over the given REST client.
func NewPollSource(client *restapi.Client, lg *logger.Logger, interval time.Duration, onEvent interfaces.EventCallback, onDown interfaces.DownCallback) *PollSource {
	return &PollSource{
		name:     "poll",
		logger:   lg,
		client:   client,
		interval: interval,
		onEvent:  onEvent,
		onDown:   onDown,
	}
}

// -----------------------------------------------------------------------------

// GetName returns the adapter name.
func (p *PollSource) GetName() string {
	return p.name
}

// GetMode returns the mode this adapter represents while active.
func (p *PollSource) GetMode() models.MSourceMode {
	return models.ModeDegraded
}

// -----------------------------------------------------------------------------

// Start performs an immediate pull, then keeps pulling on the configured
// interval. The first pull must succeed for the start to count.
func (p *PollSource) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	if err := p.pull(ctx); err != nil {
		return fmt.Errorf("poll source failed to start: %w", err)
	}

	p.running = true
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
	return nil
}

// -----------------------------------------------------------------------------

// Stop halts the poll loop. Safe to call more than once.
func (p *PollSource) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false
	close(p.done)
	return nil
}

// -----------------------------------------------------------------------------

func (p *PollSource) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := p.pull(ctx); err != nil {
				p.logger.Warning("%s : pull failed: %v", p.name, err)
				p.mu.Lock()
				running := p.running
				p.running = false
				p.mu.Unlock()
				if running && p.onDown != nil {
					p.onDown(p.name, err)
				}
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

// pull fetches the universe snapshot and emits one enriched trade event per
// row. Poll rows carry no tick side; breadth relies on change sign instead.
func (p *PollSource) pull(ctx context.Context) error {
	rows, err := p.client.GetMarket(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, row := range rows {
		p.onEvent(&models.MMarketEvent{
			Type:   models.EventTypeTrade,
			Symbol: row.Symbol,
			At:     now,
			Source: p.name,
			Price:  row.Last,
			Score:  row.Score,
			VolMa:  row.VolMa,
			Volume: row.Volume,
		})
	}
	p.logger.Debug("%s : pulled %d market rows", p.name, len(rows))
	return nil
}
