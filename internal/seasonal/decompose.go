// Package seasonal splits a coin's closing-price series into additive
// trend, seasonal, and residual components over a fixed period.
//
// The decomposition is the classical additive one: a centered moving
// average estimates the trend, per-phase means of the detrended series
// (centered to sum to zero over one period) estimate the seasonal
// component, and the residual is the remainder. The moving-average window
// shrinks symmetrically at the series edges so every date gets a trend
// value; as a consequence the additive identity
//
//	close = trend + seasonal + residual
//
// holds exactly at every row.
//
// The series must already be regularly spaced by date. Gaps are not
// detected or interpolated; irregular spacing is undefined behavior.
package seasonal

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"cryptopulse/internal/dataset"
)

// DefaultPeriod approximates monthly cycles in daily observations.
const DefaultPeriod = 30

// Decomposition holds the aligned component series for one coin. All four
// slices have the same length as Dates.
type Decomposition struct {
	Coin     string      `json:"coin"`
	Period   int         `json:"period"`
	Dates    []time.Time `json:"dates"`
	Observed []float64   `json:"observed"`
	Trend    []float64   `json:"trend"`
	Seasonal []float64   `json:"seasonal"`
	Residual []float64   `json:"residual"`
}

// Decompose computes the additive decomposition of the series' closing
// prices with the given period (DefaultPeriod when <= 0). It fails with
// dataset.ErrInsufficientHistory when the series is shorter than two full
// periods.
func Decompose(series *dataset.CoinSeries, period int) (*Decomposition, error) {
	if period <= 0 {
		period = DefaultPeriod
	}
	if period < 2 {
		return nil, fmt.Errorf("decompose %s: period must be at least 2, got %d", series.Coin, period)
	}

	n := series.Len()
	if n < 2*period {
		return nil, fmt.Errorf("decompose %s: %d observations, need at least %d (2x period %d): %w",
			series.Coin, n, 2*period, period, dataset.ErrInsufficientHistory)
	}

	observed := series.Closes()
	trend := movingAverage(observed, period)

	detrended := make([]float64, n)
	for i := range observed {
		detrended[i] = observed[i] - trend[i]
	}
	seasonal := seasonalComponent(detrended, period)

	residual := make([]float64, n)
	for i := range observed {
		residual[i] = observed[i] - trend[i] - seasonal[i]
	}

	return &Decomposition{
		Coin:     series.Coin,
		Period:   period,
		Dates:    series.Dates(),
		Observed: observed,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
	}, nil
}

// movingAverage is a centered moving average with half-window period/2. The
// window shrinks symmetrically near the edges so every index has a value.
func movingAverage(xs []float64, period int) []float64 {
	half := period / 2
	out := make([]float64, len(xs))
	for i := range xs {
		w := half
		if i < w {
			w = i
		}
		if rest := len(xs) - 1 - i; rest < w {
			w = rest
		}
		out[i] = stat.Mean(xs[i-w:i+w+1], nil)
	}
	return out
}

// seasonalComponent averages the detrended values by phase within the
// period, then centers the cycle so its mean contribution is zero.
func seasonalComponent(detrended []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		phase := i % period
		sums[phase] += v
		counts[phase]++
	}

	cycle := make([]float64, period)
	var cycleMean float64
	for p := range cycle {
		cycle[p] = sums[p] / float64(counts[p])
		cycleMean += cycle[p]
	}
	cycleMean /= float64(period)
	for p := range cycle {
		cycle[p] -= cycleMean
	}

	out := make([]float64, len(detrended))
	for i := range out {
		out[i] = cycle[i%period]
	}
	return out
}
