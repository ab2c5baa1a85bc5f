package analytics

import (
	"math"
)

// -----------------------------------------------------------------------------
// Pure statistics over price and equity series.
//
// Every function is total: for out-of-range or insufficient input it returns
// ok == false instead of throwing or leaking NaN. Callers must render a
// neutral placeholder for undefined results, never zero or a stale number.
// -----------------------------------------------------------------------------

const (
	// CorrelationWindow is the number of trailing samples per correlation leg.
	CorrelationWindow = 20

	minCorrelationSamples = 5
	minSharpeSamples      = 3
	minDrawdownSamples    = 2

	annualizationFactor = 252
)

// -----------------------------------------------------------------------------

// Correlation computes the Pearson correlation over the last CorrelationWindow
// samples of each series. Both series need at least 5 samples; a zero variance
// on either side makes the result undefined.
func Correlation(seriesA, seriesB []float64) (float64, bool) {
	a := tail(seriesA, CorrelationWindow)
	b := tail(seriesB, CorrelationWindow)
	if len(a) < minCorrelationSamples || len(b) < minCorrelationSamples {
		return 0, false
	}
	// Trailing samples are aligned on the shorter leg.
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	a = tail(a, n)
	b = tail(b, n)

	meanA := mean(a)
	meanB := mean(b)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varA*varB), true
}

// -----------------------------------------------------------------------------

// Sharpe computes the annualized Sharpe ratio of an equity series from simple
// period returns. Requires at least 3 points and non-zero return deviation.
func Sharpe(equity []float64) (float64, bool) {
	if len(equity) < minSharpeSamples {
		return 0, false
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i]-prev)/prev)
	}
	if len(returns) == 0 {
		return 0, false
	}
	m := mean(returns)
	var variance float64
	for _, r := range returns {
		variance += (r - m) * (r - m)
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)
	if std == 0 {
		return 0, false
	}
	return (m / std) * math.Sqrt(annualizationFactor), true
}

// -----------------------------------------------------------------------------

// MaxDrawdown returns the most negative peak-to-trough fraction observed in
// the equity series. The result is always <= 0. Requires at least 2 points.
func MaxDrawdown(equity []float64) (float64, bool) {
	if len(equity) < minDrawdownSamples {
		return 0, false
	}
	peak := equity[0]
	maxDrawdown := 0.0
	for _, value := range equity {
		if value > peak {
			peak = value
		}
		if peak == 0 {
			continue
		}
		drawdown := (value - peak) / peak
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown, true
}

// -----------------------------------------------------------------------------

// BreadthGauge blends the advancer ratio with a decaying tick-direction ratio
// (60/40 weighting) into a single gauge value in [0,1]. Denominators
// substitute 1 only when exactly zero, so fractional decayed tick counters
// keep their direction at full strength until fully drained.
func BreadthGauge(advancers, decliners int, tickUp, tickDown float64) float64 {
	total := advancers + decliners
	if total == 0 {
		total = 1
	}
	breadthRatio := float64(advancers) / float64(total)

	tickTotal := tickUp + tickDown
	if tickTotal == 0 {
		tickTotal = 1
	}
	tickRatio := tickUp / tickTotal

	return breadthRatio*0.6 + tickRatio*0.4
}

// -----------------------------------------------------------------------------

// Spread returns the top-of-book spread.
func Spread(bid, ask float64) float64 {
	return ask - bid
}

// -----------------------------------------------------------------------------

// Imbalance derives the bid-side order-book imbalance in [0,1]; an empty book
// reads 0.
func Imbalance(bidSize, askSize float64) float64 {
	total := bidSize + askSize
	if total == 0 {
		return 0
	}
	return bidSize / total
}

// -----------------------------------------------------------------------------

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// -----------------------------------------------------------------------------

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
