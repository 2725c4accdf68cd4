package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cryptopulse/internal/analytics"
	"cryptopulse/internal/forecast"
)

func TestXLSXWriter_WriteWorkbook(t *testing.T) {
	ds := exportDataset(t)
	table := analytics.RankVolatility(ds)

	series, err := ds.Select("Calm")
	require.NoError(t, err)
	result, err := forecast.Forecast(series, 5)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reports", "cryptopulse.xlsx")
	writer := NewXLSXWriter(nil)
	require.NoError(t, writer.WriteWorkbook(path, table, []*forecast.Result{result}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Volatility", "Forecast Calm"}, f.GetSheetList())

	coin, err := f.GetCellValue("Volatility", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Calm", coin, "most stable coin on the first data row")

	// Lone has no computable volatility; its cell stays empty.
	loneVol, err := f.GetCellValue("Volatility", "B4")
	require.NoError(t, err)
	assert.Empty(t, loneVol)

	rows, err := f.GetRows("Forecast Calm")
	require.NoError(t, err)
	require.Len(t, rows, 1+len(result.Points))
	assert.Equal(t, []string{"Date", "Forecast", "Lower", "Upper"}, rows[0])
	assert.Equal(t, result.Points[0].Date.Format("2006-01-02"), rows[1][0])
}

func TestForecastSheetName_Truncates(t *testing.T) {
	name := forecastSheetName("AVeryLongCoinNameThatKeepsGoingAndGoing")
	assert.LessOrEqual(t, len(name), maxSheetName)
	assert.Equal(t, "Forecast AVeryLongCoinNameThatK", name)
}
