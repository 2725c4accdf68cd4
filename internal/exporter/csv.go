package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cryptopulse/internal/analytics"
	"cryptopulse/internal/forecast"
)

// CSVWriter writes analytics tables as CSV report files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer. A nil logger falls back to the default.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// WriteCSV writes headers and records to path, creating parent directories
// as needed. An existing file is truncated.
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	w.logger.Info("writing csv report",
		slog.String("path", path),
		slog.Int("records", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteVolatility writes the full volatility ranking, most stable first.
// Coins without a computable volatility appear last with an empty cell.
func (w *CSVWriter) WriteVolatility(path string, table analytics.VolatilityTable) error {
	entries := table.Entries()
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{e.Coin, formatFloat(e.Volatility), formatInt(e.Samples)})
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   []string{"Coin", "Volatility", "Samples"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteForecast writes a forecast result, in-sample fits and future
// predictions alike, one row per date.
func (w *CSVWriter) WriteForecast(path string, result *forecast.Result) error {
	records := make([][]string, 0, len(result.Points))
	for _, p := range result.Points {
		records = append(records, []string{
			formatDate(p.Date),
			formatFloat(p.Value),
			formatFloat(p.Lower),
			formatFloat(p.Upper),
		})
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   []string{"Date", "Forecast", "Lower", "Upper"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteCorrelation writes coin's return correlations against every coin in
// the dataset, strongest first.
func (w *CSVWriter) WriteCorrelation(path, coin string, vector analytics.CorrelationVector) error {
	records := make([][]string, 0, len(vector))
	for _, e := range vector {
		records = append(records, []string{coin, e.Coin, formatFloat(e.Coefficient), formatInt(e.Samples)})
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   []string{"Base", "Coin", "Correlation", "Samples"},
		Records:   records,
		BOMPrefix: true,
	})
}
