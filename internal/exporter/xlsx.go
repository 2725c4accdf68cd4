package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"cryptopulse/internal/analytics"
	"cryptopulse/internal/forecast"
)

// Excel rejects sheet names longer than 31 characters.
const maxSheetName = 31

// XLSXWriter bundles analytics tables into a single Excel workbook.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a workbook writer. A nil logger falls back to the
// default.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// WriteWorkbook writes the volatility ranking plus one forecast sheet per
// result to a single workbook at path.
func (w *XLSXWriter) WriteWorkbook(path string, table analytics.VolatilityTable, forecasts []*forecast.Result) error {
	w.logger.Info("writing xlsx report",
		slog.String("path", path),
		slog.Int("coins", table.Len()),
		slog.Int("forecasts", len(forecasts)))

	f := excelize.NewFile()
	defer f.Close()

	const volSheet = "Volatility"
	f.SetSheetName(f.GetSheetName(0), volSheet)
	if err := writeRow(f, volSheet, 1, []interface{}{"Coin", "Volatility", "Samples"}); err != nil {
		return err
	}
	for i, e := range table.Entries() {
		row := []interface{}{e.Coin, cellFloat(e.Volatility), e.Samples}
		if err := writeRow(f, volSheet, i+2, row); err != nil {
			return err
		}
	}

	for _, result := range forecasts {
		sheet := forecastSheetName(result.Coin)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet, err)
		}
		if err := writeRow(f, sheet, 1, []interface{}{"Date", "Forecast", "Lower", "Upper"}); err != nil {
			return err
		}
		for i, p := range result.Points {
			row := []interface{}{formatDate(p.Date), cellFloat(p.Value), cellFloat(p.Lower), cellFloat(p.Upper)}
			if err := writeRow(f, sheet, i+2, row); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// writeRow writes values into a 1-based row, one cell per value.
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("column %d: %w", col+1, err)
		}
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheet, name+strconv.Itoa(row), v); err != nil {
			return fmt.Errorf("set cell %s%d: %w", name, row, err)
		}
	}
	return nil
}

// cellFloat keeps floats as numeric cells while mapping NaN to an empty
// cell.
func cellFloat(f float64) interface{} {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

func forecastSheetName(coin string) string {
	name := "Forecast " + coin
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
