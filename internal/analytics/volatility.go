package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"cryptopulse/internal/dataset"
)

// CoinVolatility is one row of the volatility table: the sample standard
// deviation of a coin's daily returns over its full observed history.
// Volatility is NaN when the coin has fewer than two return observations.
type CoinVolatility struct {
	Coin       string  `json:"coin"`
	Volatility float64 `json:"-"`
	Samples    int     `json:"samples"`
}

// VolatilityTable ranks every coin in a dataset by return volatility. It
// does not depend on any coin selection, so callers memoize it per dataset
// version. Entries are ordered ascending by volatility with NaN entries
// (single-observation coins) last.
type VolatilityTable struct {
	entries []CoinVolatility
}

// RankVolatility computes per-coin return volatility across the whole
// dataset. Null returns (each coin's first day) are ignored. Coins whose
// sample standard deviation is undefined are kept in the table with NaN
// volatility; the top-n views exclude them and they are never recommended.
func RankVolatility(ds *dataset.Dataset) VolatilityTable {
	entries := make([]CoinVolatility, 0, len(ds.Coins()))

	for _, coin := range ds.Coins() {
		series, err := ds.Select(coin)
		if err != nil {
			continue // unreachable: Coins() only lists coins with rows
		}

		var returns []float64
		for _, obs := range series.Observations {
			if !math.IsNaN(obs.Return) {
				returns = append(returns, obs.Return)
			}
		}

		vol := math.NaN()
		if len(returns) >= 2 {
			vol = stat.StdDev(returns, nil)
		}

		entries = append(entries, CoinVolatility{
			Coin:       coin,
			Volatility: vol,
			Samples:    len(returns),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return lessWithNaNLast(entries[i].Volatility, entries[j].Volatility)
	})

	return VolatilityTable{entries: entries}
}

// Entries returns all table rows, ascending by volatility, NaN last.
func (t VolatilityTable) Entries() []CoinVolatility {
	out := make([]CoinVolatility, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of coins in the table.
func (t VolatilityTable) Len() int { return len(t.entries) }

// MostStable returns the n coins with smallest volatility, ascending.
func (t VolatilityTable) MostStable(n int) []CoinVolatility {
	ranked := t.ranked()
	if n > len(ranked) {
		n = len(ranked)
	}
	return append([]CoinVolatility(nil), ranked[:n]...)
}

// MostVolatile returns the n coins with largest volatility, descending.
func (t VolatilityTable) MostVolatile(n int) []CoinVolatility {
	ranked := t.ranked()
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]CoinVolatility, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		out = append(out, ranked[i])
	}
	return out
}

// Recommendation surfaces the single most stable coin as a buy suggestion.
// This is a volatility heuristic only, not a financial judgment. The second
// return is false when no coin has a defined volatility.
func (t VolatilityTable) Recommendation() (CoinVolatility, bool) {
	ranked := t.ranked()
	if len(ranked) == 0 {
		return CoinVolatility{}, false
	}
	return ranked[0], true
}

// ranked returns only the entries with defined volatility, ascending.
func (t VolatilityTable) ranked() []CoinVolatility {
	end := len(t.entries)
	for end > 0 && math.IsNaN(t.entries[end-1].Volatility) {
		end--
	}
	return t.entries[:end]
}

// lessWithNaNLast orders ascending with NaN values after all real values.
func lessWithNaNLast(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a < b
	}
}
