// Command report generates offline analytics reports from a dataset CSV:
// the volatility ranking, per-coin forecasts and correlations, and a
// combined Excel workbook.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cryptopulse/internal/analytics"
	"cryptopulse/internal/dataset"
	"cryptopulse/internal/exporter"
	"cryptopulse/internal/forecast"
)

func main() {
	dataPath := flag.String("data", "", "path to the dataset CSV (required)")
	outputDir := flag.String("out", "reports", "output directory for report files")
	coinFlag := flag.String("coin", "", "comma-separated coins to forecast (defaults to all)")
	horizon := flag.Int("horizon", forecast.DefaultHorizon, "forecast horizon in days")
	workbook := flag.Bool("xlsx", true, "also write a combined Excel workbook")
	flag.Parse()

	if *dataPath == "" {
		slog.Error("missing required -data flag")
		flag.Usage()
		os.Exit(1)
	}
	if err := run(*dataPath, *outputDir, *coinFlag, *horizon, *workbook); err != nil {
		slog.Error("report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(dataPath, outputDir, coinFlag string, horizon int, workbook bool) error {
	ds, err := dataset.LoadFile(dataPath)
	if err != nil {
		return err
	}
	slog.Info("dataset loaded",
		slog.String("path", dataPath),
		slog.String("fingerprint", ds.Fingerprint()),
		slog.Int("rows", ds.Len()),
		slog.Int("coins", len(ds.Coins())))

	coins := ds.Coins()
	if coinFlag != "" {
		coins = splitCoins(coinFlag)
	}

	csvWriter := exporter.NewCSVWriter(nil)

	table := analytics.RankVolatility(ds)
	if err := csvWriter.WriteVolatility(filepath.Join(outputDir, "volatility.csv"), table); err != nil {
		return err
	}

	var forecasts []*forecast.Result
	for _, coin := range coins {
		series, err := ds.Select(coin)
		if err != nil {
			return err
		}

		result, err := forecast.Forecast(series, horizon)
		if errors.Is(err, dataset.ErrInsufficientHistory) {
			slog.Warn("skipping forecast, not enough history", slog.String("coin", coin))
			continue
		}
		if err != nil {
			return fmt.Errorf("forecast %s: %w", coin, err)
		}
		forecasts = append(forecasts, result)

		if err := csvWriter.WriteForecast(reportPath(outputDir, "forecast", coin), result); err != nil {
			return err
		}

		vector, err := analytics.CorrelationFor(ds, coin, false)
		if err != nil {
			return fmt.Errorf("correlation %s: %w", coin, err)
		}
		if err := csvWriter.WriteCorrelation(reportPath(outputDir, "correlation", coin), coin, vector); err != nil {
			return err
		}
	}

	if workbook {
		xlsxWriter := exporter.NewXLSXWriter(nil)
		if err := xlsxWriter.WriteWorkbook(filepath.Join(outputDir, "cryptopulse.xlsx"), table, forecasts); err != nil {
			return err
		}
	}

	slog.Info("reports written",
		slog.String("dir", outputDir),
		slog.Int("forecasts", len(forecasts)))
	return nil
}

func splitCoins(flagValue string) []string {
	var coins []string
	for _, c := range strings.Split(flagValue, ",") {
		if c = strings.TrimSpace(c); c != "" {
			coins = append(coins, c)
		}
	}
	return coins
}

// reportPath builds a per-coin file name, replacing path separators that a
// coin name could theoretically carry.
func reportPath(dir, kind, coin string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, coin)
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", kind, safe))
}
