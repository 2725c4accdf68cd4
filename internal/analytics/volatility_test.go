package analytics

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopulse/internal/dataset"
)

// Returns: Calm ±0.01, Wild ±0.30, Mid ±0.10, Lone has a single row (no
// returns at all, volatility undefined).
const volatilityCSV = `Date,Coin,Close,Marketcap,Return
2021-01-01,Calm,10,100,
2021-01-02,Calm,10.1,101,0.01
2021-01-03,Calm,10,100,-0.01
2021-01-04,Calm,10.1,101,0.01
2021-01-01,Wild,5,50,
2021-01-02,Wild,6.5,65,0.30
2021-01-03,Wild,4.55,45,-0.30
2021-01-04,Wild,5.9,59,0.30
2021-01-01,Mid,20,200,
2021-01-02,Mid,22,220,0.10
2021-01-03,Mid,19.8,198,-0.10
2021-01-04,Mid,21.8,218,0.10
2021-01-01,Lone,1,10,
`

func loadVolatilityDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(strings.NewReader(volatilityCSV))
	require.NoError(t, err)
	return ds
}

func TestRankVolatility(t *testing.T) {
	table := RankVolatility(loadVolatilityDataset(t))

	require.Equal(t, 4, table.Len())

	entries := table.Entries()
	assert.Equal(t, []string{"Calm", "Mid", "Wild", "Lone"}, coinsOf(entries))

	// Lone has a single observation: kept with NaN volatility, sorted last.
	assert.True(t, math.IsNaN(entries[3].Volatility))
	assert.Equal(t, 0, entries[3].Samples)

	// Sample standard deviation of {0.01, -0.01, 0.01}.
	assert.InDelta(t, 0.011547, entries[0].Volatility, 1e-5)
	assert.Equal(t, 3, entries[0].Samples)
}

func TestVolatilityViews(t *testing.T) {
	table := RankVolatility(loadVolatilityDataset(t))

	t.Run("most stable ascending", func(t *testing.T) {
		stable := table.MostStable(2)
		assert.Equal(t, []string{"Calm", "Mid"}, coinsOf(stable))
	})

	t.Run("most volatile descending", func(t *testing.T) {
		volatile := table.MostVolatile(2)
		assert.Equal(t, []string{"Wild", "Mid"}, coinsOf(volatile))
	})

	t.Run("n beyond defined entries excludes NaN coins", func(t *testing.T) {
		stable := table.MostStable(10)
		assert.Equal(t, []string{"Calm", "Mid", "Wild"}, coinsOf(stable))

		volatile := table.MostVolatile(10)
		assert.Equal(t, []string{"Wild", "Mid", "Calm"}, coinsOf(volatile))
	})
}

func TestRecommendation(t *testing.T) {
	table := RankVolatility(loadVolatilityDataset(t))

	rec, ok := table.Recommendation()
	require.True(t, ok)
	assert.Equal(t, "Calm", rec.Coin)
}

func TestRecommendation_NoDefinedVolatility(t *testing.T) {
	singleRows := `Date,Coin,Close,Marketcap,Return
2021-01-01,A,1,10,
2021-01-01,B,2,20,
`
	ds, err := dataset.Load(strings.NewReader(singleRows))
	require.NoError(t, err)

	table := RankVolatility(ds)
	assert.Equal(t, 2, table.Len())

	_, ok := table.Recommendation()
	assert.False(t, ok)
}

func coinsOf(entries []CoinVolatility) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Coin
	}
	return out
}
