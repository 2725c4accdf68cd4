package dataset

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Domain errors surfaced by selection and the downstream analytics engines.
var (
	// ErrUnknownCoin is returned when a selected coin has zero observations.
	ErrUnknownCoin = errors.New("unknown coin")
	// ErrInsufficientHistory is returned when a series is too short for the
	// requested computation (forecast fit, seasonal decomposition).
	ErrInsufficientHistory = errors.New("insufficient history")
)

// LoadError describes a dataset that could not be loaded: missing required
// columns, an unparsable date, or a malformed numeric cell.
type LoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load dataset %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("load dataset %s: %s", e.Source, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Observation is one row of the cleaned dataset: one coin on one calendar day.
// Return is the fractional daily change and is NaN on a coin's first observed
// day (the source leaves it empty there).
type Observation struct {
	Date      time.Time `json:"date"`
	Coin      string    `json:"coin"`
	Close     float64   `json:"close"`
	Marketcap float64   `json:"marketcap"`
	Return    float64   `json:"-"`
}

// Dataset is the full in-memory collection of observations. It is built once
// by the loader, treated as immutable, and shared across all downstream
// queries within a session.
type Dataset struct {
	observations []Observation
	byCoin       map[string][]Observation
	coins        []string
	fingerprint  string
}

// newDataset indexes observations by coin and sorts each coin's rows by
// ascending date. Input is trusted to be pre-cleaned: no deduplication.
func newDataset(observations []Observation, fingerprint string) *Dataset {
	byCoin := make(map[string][]Observation)
	for _, obs := range observations {
		byCoin[obs.Coin] = append(byCoin[obs.Coin], obs)
	}

	coins := make([]string, 0, len(byCoin))
	for coin, rows := range byCoin {
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].Date.Before(rows[j].Date)
		})
		coins = append(coins, coin)
	}
	sort.Strings(coins)

	return &Dataset{
		observations: observations,
		byCoin:       byCoin,
		coins:        coins,
		fingerprint:  fingerprint,
	}
}

// Coins returns the distinct coin identifiers, sorted.
func (d *Dataset) Coins() []string {
	out := make([]string, len(d.coins))
	copy(out, d.coins)
	return out
}

// Len returns the total number of observations.
func (d *Dataset) Len() int { return len(d.observations) }

// Fingerprint identifies the source content this dataset was loaded from.
func (d *Dataset) Fingerprint() string { return d.fingerprint }

// Select returns the date-ordered series for one coin. It fails with
// ErrUnknownCoin when the coin has no observations, since every downstream
// component requires at least one row.
func (d *Dataset) Select(coin string) (*CoinSeries, error) {
	rows, ok := d.byCoin[coin]
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("select %q: %w", coin, ErrUnknownCoin)
	}
	return &CoinSeries{Coin: coin, Observations: rows}, nil
}

// CoinSeries is the date-ascending subsequence of observations for one coin.
// It shares backing storage with the Dataset and must not be mutated.
type CoinSeries struct {
	Coin         string
	Observations []Observation
}

// Len returns the number of observations in the series.
func (s *CoinSeries) Len() int { return len(s.Observations) }

// Latest returns the most recent observation in O(1).
func (s *CoinSeries) Latest() Observation {
	return s.Observations[len(s.Observations)-1]
}

// Dates returns the observation dates in ascending order.
func (s *CoinSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Observations))
	for i, obs := range s.Observations {
		out[i] = obs.Date
	}
	return out
}

// Closes returns the closing prices aligned with Dates.
func (s *CoinSeries) Closes() []float64 {
	out := make([]float64, len(s.Observations))
	for i, obs := range s.Observations {
		out[i] = obs.Close
	}
	return out
}

// Marketcaps returns the market capitalizations aligned with Dates.
func (s *CoinSeries) Marketcaps() []float64 {
	out := make([]float64, len(s.Observations))
	for i, obs := range s.Observations {
		out[i] = obs.Marketcap
	}
	return out
}
