// Package forecast fits an additive trend-plus-seasonality model to a
// coin's closing-price history and produces point predictions with a
// confidence band for the historical range plus a future horizon.
//
// The model is a linear trend with Fourier seasonal terms, fit by ordinary
// least squares. Seasonal blocks only enter the design matrix when the
// series spans at least two full periods, so short histories degrade to a
// plain trend fit instead of overfitting. The fit is deterministic: the
// same series always produces the same forecast.
//
// Observations are assumed regularly spaced by calendar day; future rows
// extend one day at a time past the last historical date.
package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"cryptopulse/internal/dataset"
)

// DefaultHorizon is the number of future calendar days predicted when the
// caller does not ask for a specific horizon.
const DefaultHorizon = 30

// minObservations is the hard floor for fitting: below two points not even
// a trend line is identifiable.
const minObservations = 2

// intervalZ is the normal quantile for the default 95% confidence band.
const intervalZ = 1.96

// seasonality is one Fourier block of the design matrix.
type seasonality struct {
	period float64 // in days
	order  int     // number of sin/cos harmonics
}

// defaultSeasonalities mirror the usual defaults for daily data: weekly and
// yearly cycles. Each block is enabled only when the series spans at least
// two of its periods.
var defaultSeasonalities = []seasonality{
	{period: 7, order: 3},
	{period: 365.25, order: 10},
}

// Point is one forecast row. Lower <= Value <= Upper holds for every row.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"yhat"`
	Lower float64   `json:"yhat_lower"`
	Upper float64   `json:"yhat_upper"`
}

// Result covers every historical date plus the requested horizon, in
// ascending date order. HistoryLen rows are in-sample fits; the rest are
// future predictions. A Result is immutable once produced.
type Result struct {
	Coin       string  `json:"coin"`
	Points     []Point `json:"points"`
	HistoryLen int     `json:"history_len"`
	Horizon    int     `json:"horizon"`
}

// Forecast fits the model to the series' (date, close) pairs and predicts
// horizonDays past the last observation. It fails with
// dataset.ErrInsufficientHistory below two observations.
func Forecast(series *dataset.CoinSeries, horizonDays int) (*Result, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizon
	}

	n := series.Len()
	if n < minObservations {
		return nil, fmt.Errorf("forecast %s: %d observations, need at least %d: %w",
			series.Coin, n, minObservations, dataset.ErrInsufficientHistory)
	}

	dates := series.Dates()
	closes := series.Closes()

	// Time axis in fractional days since the first observation.
	ts := make([]float64, n)
	for i, d := range dates {
		ts[i] = d.Sub(dates[0]).Hours() / 24
	}

	active := activeSeasonalities(ts[n-1]-ts[0], n)
	coef, err := fit(ts, closes, active)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", series.Coin, err)
	}

	// In-sample residual spread drives a symmetric confidence band.
	residuals := make([]float64, n)
	for i := range ts {
		residuals[i] = closes[i] - predict(coef, ts[i], active)
	}
	band := intervalZ * stdDevOrZero(residuals)

	points := make([]Point, 0, n+horizonDays)
	for i := range ts {
		points = append(points, newPoint(dates[i], predict(coef, ts[i], active), band))
	}

	last := dates[n-1]
	for i := 1; i <= horizonDays; i++ {
		d := last.AddDate(0, 0, i)
		t := d.Sub(dates[0]).Hours() / 24
		points = append(points, newPoint(d, predict(coef, t, active), band))
	}

	return &Result{
		Coin:       series.Coin,
		Points:     points,
		HistoryLen: n,
		Horizon:    horizonDays,
	}, nil
}

func newPoint(date time.Time, value, band float64) Point {
	return Point{Date: date, Value: value, Lower: value - band, Upper: value + band}
}

// activeSeasonalities picks the Fourier blocks the series can support: the
// span must cover two full periods and the design matrix must stay strictly
// overdetermined.
func activeSeasonalities(spanDays float64, n int) []seasonality {
	var active []seasonality
	columns := 2 // intercept + trend
	for _, s := range defaultSeasonalities {
		if spanDays < 2*s.period {
			continue
		}
		if columns+2*s.order >= n {
			continue
		}
		active = append(active, s)
		columns += 2 * s.order
	}
	return active
}

// designRow fills one row of the design matrix for time t.
func designRow(row []float64, t float64, active []seasonality) {
	row[0] = 1
	row[1] = t
	k := 2
	for _, s := range active {
		for h := 1; h <= s.order; h++ {
			angle := 2 * math.Pi * float64(h) * t / s.period
			row[k] = math.Sin(angle)
			row[k+1] = math.Cos(angle)
			k += 2
		}
	}
}

// fit solves the least-squares problem for the model coefficients.
func fit(ts, ys []float64, active []seasonality) ([]float64, error) {
	cols := 2
	for _, s := range active {
		cols += 2 * s.order
	}

	x := mat.NewDense(len(ts), cols, nil)
	row := make([]float64, cols)
	for i, t := range ts {
		designRow(row, t, active)
		x.SetRow(i, row)
	}
	y := mat.NewVecDense(len(ys), ys)

	var qr mat.QR
	qr.Factorize(x)

	coef := mat.NewVecDense(cols, nil)
	if err := qr.SolveVecTo(coef, false, y); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	out := make([]float64, cols)
	copy(out, coef.RawVector().Data)
	return out, nil
}

// predict evaluates the fitted model at time t.
func predict(coef []float64, t float64, active []seasonality) float64 {
	row := make([]float64, len(coef))
	designRow(row, t, active)
	var sum float64
	for i, c := range coef {
		sum += c * row[i]
	}
	return sum
}

// stdDevOrZero is the sample standard deviation, or zero when it is
// undefined (a two-point fit has no spread to measure).
func stdDevOrZero(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd := stat.StdDev(xs, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}
