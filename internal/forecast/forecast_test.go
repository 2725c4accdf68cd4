package forecast

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptopulse/internal/dataset"
)

// dailySeries builds a gap-free daily series whose close is produced by fn.
func dailySeries(t *testing.T, days int, fn func(day int) float64) *dataset.CoinSeries {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("Date,Coin,Close,Marketcap,Return\n")
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		ret := ""
		if i > 0 {
			ret = "0.001"
		}
		fmt.Fprintf(&sb, "%s,Testcoin,%.6f,%.2f,%s\n", date, fn(i), fn(i)*1e6, ret)
	}

	ds, err := dataset.Load(strings.NewReader(sb.String()))
	require.NoError(t, err)
	series, err := ds.Select("Testcoin")
	require.NoError(t, err)
	return series
}

func TestForecast_RowCountAndDates(t *testing.T) {
	series := dailySeries(t, 90, func(day int) float64 { return 100 + float64(day) })

	result, err := Forecast(series, 30)
	require.NoError(t, err)

	assert.Equal(t, 120, len(result.Points))
	assert.Equal(t, 90, result.HistoryLen)
	assert.Equal(t, 30, result.Horizon)

	// Dates monotonically increasing by exactly one day, no gaps.
	for i := 1; i < len(result.Points); i++ {
		gap := result.Points[i].Date.Sub(result.Points[i-1].Date)
		assert.Equal(t, 24*time.Hour, gap, "row %d", i)
	}
}

func TestForecast_BandOrdering(t *testing.T) {
	noisy := func(day int) float64 {
		return 100 + 0.5*float64(day) + 3*math.Sin(float64(day)*1.7)
	}
	series := dailySeries(t, 120, noisy)

	result, err := Forecast(series, 30)
	require.NoError(t, err)

	for i, p := range result.Points {
		assert.LessOrEqual(t, p.Lower, p.Value, "row %d", i)
		assert.LessOrEqual(t, p.Value, p.Upper, "row %d", i)
	}
}

func TestForecast_RecoversLinearTrend(t *testing.T) {
	series := dailySeries(t, 60, func(day int) float64 { return 50 + 2*float64(day) })

	result, err := Forecast(series, 10)
	require.NoError(t, err)

	// A pure linear series is fit exactly; the extrapolation continues it.
	last := result.Points[len(result.Points)-1]
	assert.InDelta(t, 50+2*69, last.Value, 1e-6)

	// Zero residuals give a zero-width band.
	assert.InDelta(t, last.Value, last.Lower, 1e-6)
	assert.InDelta(t, last.Value, last.Upper, 1e-6)
}

func TestForecast_WeeklySeasonality(t *testing.T) {
	weekly := func(day int) float64 {
		return 100 + float64(day) + 10*math.Sin(2*math.Pi*float64(day)/7)
	}
	series := dailySeries(t, 70, weekly)

	result, err := Forecast(series, 14)
	require.NoError(t, err)

	// The weekly Fourier block is active, so the in-sample fit should track
	// the oscillation far better than a trend line (whose worst-case error
	// is the 10-unit amplitude).
	for i := 0; i < result.HistoryLen; i++ {
		assert.InDelta(t, weekly(i), result.Points[i].Value, 1.0, "day %d", i)
	}
}

func TestForecast_InsufficientHistory(t *testing.T) {
	series := dailySeries(t, 1, func(int) float64 { return 100 })

	_, err := Forecast(series, 30)
	assert.ErrorIs(t, err, dataset.ErrInsufficientHistory)
}

func TestForecast_TwoPointsSucceeds(t *testing.T) {
	series := dailySeries(t, 2, func(day int) float64 { return 100 + float64(day) })

	result, err := Forecast(series, 5)
	require.NoError(t, err)
	assert.Len(t, result.Points, 7)
}

func TestForecast_DefaultHorizon(t *testing.T) {
	series := dailySeries(t, 40, func(day int) float64 { return 100 + float64(day) })

	result, err := Forecast(series, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHorizon, result.Horizon)
	assert.Len(t, result.Points, 40+DefaultHorizon)
}
