package sources

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"market-eye/src/interfaces"
	"market-eye/src/logger"
	"market-eye/src/models"
)

// -----------------------------------------------------------------------------
// Simulation source: offline random-walk event generator
// -----------------------------------------------------------------------------

const (
	cryptoDriftPct = 0.6
	equityDriftPct = 0.25
	anomalyChance  = 0.02

	minTradeSize  = 20.0
	tradeSizeSpan = 600.0
)

// SimSource walks prices from the seed universe so the engine always has
// data to aggregate, even fully offline. Never the source of truth: the
// failover controller stops it permanently once any real source delivers.
type SimSource struct {
	name     string
	logger   *logger.Logger
	interval time.Duration
	onEvent  interfaces.EventCallback
	rng      *rand.Rand

	entries []*models.MUniverseEntry
	prices  map[string]float64
	scores  map[string]int

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// -----------------------------------------------------------------------------

// NewSimSource creates a simulation adapter seeded from the universe.
func NewSimSource(universe []*models.MUniverseEntry, lg *logger.Logger, interval time.Duration, onEvent interfaces.EventCallback) *SimSource {
	source := &SimSource{
		name:     "simulation",
		logger:   lg,
		interval: interval,
		onEvent:  onEvent,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		entries:  universe,
		prices:   make(map[string]float64, len(universe)),
		scores:   make(map[string]int, len(universe)),
	}
	for _, entry := range universe {
		source.prices[entry.Symbol] = entry.Last
		source.scores[entry.Symbol] = entry.Score
	}
	return source
}

// -----------------------------------------------------------------------------

// GetName returns the adapter name.
func (s *SimSource) GetName() string {
	return s.name
}

// GetMode returns the mode this adapter represents while active.
func (s *SimSource) GetMode() models.MSourceMode {
	return models.ModeSimulated
}

// -----------------------------------------------------------------------------

// Start begins the walk. A simulation start never fails.
func (s *SimSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if len(s.entries) == 0 {
		return fmt.Errorf("simulation requires a non-empty universe")
	}

	s.running = true
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	s.logger.Info("%s : simulation started for %d instruments", s.name, len(s.entries))
	return nil
}

// -----------------------------------------------------------------------------

// Stop halts the walk. Safe to call more than once.
func (s *SimSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	close(s.done)
	return nil
}

// -----------------------------------------------------------------------------

func (s *SimSource) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// -----------------------------------------------------------------------------

// tick emits one synthetic trade per instrument and occasionally a synthetic
// anomaly. Crypto drifts wider than equities.
func (s *SimSource) tick() {
	now := time.Now()
	for _, entry := range s.entries {
		drift := equityDriftPct
		if entry.Asset == models.AssetCrypto {
			drift = cryptoDriftPct
		}

		price := s.prices[entry.Symbol]
		stepPct := (s.rng.Float64()*2 - 1) * drift
		price = price * (1 + stepPct/100)
		if price <= 0 {
			price = entry.Last
		}
		s.prices[entry.Symbol] = price

		score := s.scores[entry.Symbol] + s.rng.Intn(5) - 2
		if score < 5 {
			score = 5
		}
		if score > 99 {
			score = 99
		}
		s.scores[entry.Symbol] = score

		size := math.Max(minTradeSize, s.rng.Float64()*tradeSizeSpan)
		side := "B"
		if stepPct < 0 {
			side = "S"
		}

		s.onEvent(&models.MMarketEvent{
			Type:   models.EventTypeTrade,
			Symbol: entry.Symbol,
			At:     now,
			Source: s.name,
			Price:  price,
			Size:   size,
			Side:   side,
			Score:  score,
			VolMa:  entry.VolMa,
			Volume: entry.Volume,
		})

		if s.rng.Float64() < anomalyChance {
			s.onEvent(&models.MMarketEvent{
				Type:   models.EventTypeAnomaly,
				Symbol: entry.Symbol,
				At:     now,
				Source: s.name,
				Price:  price,
				Kind:   string(models.AnomalyVolSpike),
				Detail: fmt.Sprintf("Vol Spike %.0f", size),
			})
		}
	}
}
