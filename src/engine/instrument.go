package engine

import (
	"time"

	"market-eye/src/models"
	"market-eye/src/timeseries"
	"market-eye/src/utils"
)

// -----------------------------------------------------------------------------
// Per-symbol mutable state, owned exclusively by the MarketEngine
// -----------------------------------------------------------------------------

// InstrumentState tracks one instrument of the fixed universe. All mutation
// goes through the engine's write lock.
type InstrumentState struct {
	Symbol     string
	Last       float64
	ChangePct  float64
	Score      int
	VolMa      float64
	Signal     models.MSignal
	Sector     string
	AssetClass models.MAssetClass
	Volume     float64
	History    *timeseries.Buffer
	Quote      *models.MQuote
}

// -----------------------------------------------------------------------------

// NewInstrumentState seeds an instrument from a universe entry. The history
// starts with the seed price so sparklines have an anchor point.
func NewInstrumentState(entry *models.MUniverseEntry, historyDepth int) *InstrumentState {
	state := &InstrumentState{
		Symbol:     entry.Symbol,
		Last:       entry.Last,
		ChangePct:  entry.ChangePct,
		Score:      entry.Score,
		VolMa:      entry.VolMa,
		Signal:     entry.Signal,
		Sector:     entry.Sector,
		AssetClass: entry.Asset,
		Volume:     entry.Volume,
		History:    timeseries.NewBuffer(historyDepth),
	}
	if state.Signal == "" {
		state.Signal = models.SignalWait
	}
	if state.Last > 0 {
		state.History.AppendValue(state.Last, time.Now())
	}
	return state
}

// -----------------------------------------------------------------------------

// ApplyTrade folds a trade into the instrument and re-evaluates the signal.
// It returns true when the signal *entered* STRONG_BUY on this tick, which is
// the edge condition for the alert side channel: consecutive STRONG_BUY ticks
// return false until the signal leaves and re-enters the state.
func (s *InstrumentState) ApplyTrade(event *models.MMarketEvent) bool {
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}

	if s.Last != 0 && utils.IsFinite(s.Last) {
		s.ChangePct = (event.Price - s.Last) / s.Last * 100
	} else {
		// First tick: no reference price yet, never a divide-by-zero.
		s.ChangePct = 0
	}
	s.Last = event.Price
	s.History.AppendValue(event.Price, at)

	// Optional enrichment from richer sources (poll rows, simulation).
	if event.Score != 0 {
		s.Score = event.Score
	}
	if event.VolMa != 0 {
		s.VolMa = event.VolMa
	}
	if event.Volume != 0 {
		s.Volume = event.Volume
	}

	prev := s.Signal
	s.Signal = evaluateSignal(s.Score, s.ChangePct)
	return s.Signal == models.SignalStrongBuy && prev != models.SignalStrongBuy
}

// -----------------------------------------------------------------------------

// ApplyQuote replaces the top-of-book quote wholesale; partial fields are
// never merged into the previous quote.
func (s *InstrumentState) ApplyQuote(event *models.MMarketEvent) {
	imbalance := event.Imbalance
	if imbalance == 0 {
		total := event.BidSize + event.AskSize
		if total > 0 {
			imbalance = event.BidSize / total
		}
	}
	s.Quote = &models.MQuote{
		Bid:       event.Bid,
		Ask:       event.Ask,
		BidSize:   event.BidSize,
		AskSize:   event.AskSize,
		Imbalance: imbalance,
	}
}

// -----------------------------------------------------------------------------

// evaluateSignal applies the deterministic signal rule on every tick.
func evaluateSignal(score int, changePct float64) models.MSignal {
	switch {
	case score >= 90 && changePct > 1.4:
		return models.SignalStrongBuy
	case score >= 80:
		return models.SignalBuy
	case score <= 40 || changePct < -1.5:
		return models.SignalSell
	default:
		return models.SignalWait
	}
}

// -----------------------------------------------------------------------------

// view returns an immutable copy for snapshots. chartWindow bounds the
// history slice handed out.
func (s *InstrumentState) view(chartWindow int) models.MInstrument {
	instrument := models.MInstrument{
		Symbol:     s.Symbol,
		Last:       s.Last,
		ChangePct:  s.ChangePct,
		Score:      s.Score,
		VolMa:      s.VolMa,
		Signal:     s.Signal,
		Sector:     s.Sector,
		AssetClass: s.AssetClass,
		Volume:     s.Volume,
		History:    s.History.WindowValues(chartWindow),
	}
	if s.Quote != nil {
		quote := *s.Quote
		instrument.Quote = &quote
	}
	return instrument
}
