package dataset

import (
	"crypto/sha256"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Required dataset columns. Order in the file is not significant; the loader
// locates each column by header name.
const (
	columnDate      = "Date"
	columnCoin      = "Coin"
	columnClose     = "Close"
	columnMarketcap = "Marketcap"
	columnReturn    = "Return"
)

// dateLayouts are the accepted ISO-8601-compatible calendar formats.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadFile reads the dataset from a CSV file on disk.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Reason: "open file", Err: err}
	}
	defer f.Close()
	return load(f, path)
}

// Load reads the dataset from an arbitrary reader. The fingerprint is a
// content hash, so identical content yields an identical dataset version.
func Load(r io.Reader) (*Dataset, error) {
	return load(r, "reader")
}

func load(r io.Reader, source string) (*Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: source, Reason: "read content", Err: err}
	}

	// Strip UTF-8 BOM if present.
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Source: source, Reason: "parse CSV", Err: err}
	}
	if len(records) < 2 {
		return nil, &LoadError{Source: source, Reason: "no data rows"}
	}

	cols, err := findColumnIndices(records[0])
	if err != nil {
		return nil, &LoadError{Source: source, Reason: "resolve columns", Err: err}
	}

	observations := make([]Observation, 0, len(records)-1)
	for line, record := range records[1:] {
		obs, err := parseRecord(record, cols)
		if err != nil {
			return nil, &LoadError{
				Source: source,
				Reason: fmt.Sprintf("row %d", line+2),
				Err:    err,
			}
		}
		observations = append(observations, obs)
	}

	fingerprint := fmt.Sprintf("sha256:%x", sha256.Sum256(content))
	ds := newDataset(observations, fingerprint)

	slog.Debug("dataset loaded",
		slog.String("source", source),
		slog.Int("rows", ds.Len()),
		slog.Int("coins", len(ds.coins)))

	return ds, nil
}

// columnIndices holds the resolved positions of the required columns.
type columnIndices struct {
	date      int
	coin      int
	close     int
	marketcap int
	ret       int
}

// findColumnIndices resolves header names to positions. Exact names are
// matched first, then a lowercase fallback covers common variants.
func findColumnIndices(header []string) (columnIndices, error) {
	cols := columnIndices{date: -1, coin: -1, close: -1, marketcap: -1, ret: -1}

	for i, col := range header {
		clean := strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))

		switch clean {
		case columnDate:
			cols.date = i
		case columnCoin:
			cols.coin = i
		case columnClose:
			cols.close = i
		case columnMarketcap:
			cols.marketcap = i
		case columnReturn:
			cols.ret = i
		default:
			switch strings.ToLower(clean) {
			case "date":
				cols.date = i
			case "coin", "symbol", "ticker":
				cols.coin = i
			case "close", "close_price", "closeprice", "closing_price":
				cols.close = i
			case "marketcap", "market_cap":
				cols.marketcap = i
			case "return", "daily_return":
				cols.ret = i
			}
		}
	}

	var missing []string
	if cols.date == -1 {
		missing = append(missing, columnDate)
	}
	if cols.coin == -1 {
		missing = append(missing, columnCoin)
	}
	if cols.close == -1 {
		missing = append(missing, columnClose)
	}
	if cols.marketcap == -1 {
		missing = append(missing, columnMarketcap)
	}
	if cols.ret == -1 {
		missing = append(missing, columnReturn)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("required columns not found: %s (header: %v)",
			strings.Join(missing, ", "), header)
	}

	return cols, nil
}

func parseRecord(record []string, cols columnIndices) (Observation, error) {
	max := cols.date
	for _, idx := range []int{cols.coin, cols.close, cols.marketcap, cols.ret} {
		if idx > max {
			max = idx
		}
	}
	if len(record) <= max {
		return Observation{}, fmt.Errorf("short record: %d fields", len(record))
	}

	date, err := parseDate(strings.TrimSpace(record[cols.date]))
	if err != nil {
		return Observation{}, err
	}

	coin := strings.TrimSpace(record[cols.coin])
	if coin == "" {
		return Observation{}, fmt.Errorf("empty coin identifier")
	}

	closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[cols.close]), 64)
	if err != nil {
		return Observation{}, fmt.Errorf("parse close: %w", err)
	}

	marketcap, err := strconv.ParseFloat(strings.TrimSpace(record[cols.marketcap]), 64)
	if err != nil {
		return Observation{}, fmt.Errorf("parse marketcap: %w", err)
	}

	// Return is empty on a coin's first observed day.
	ret := math.NaN()
	if raw := strings.TrimSpace(record[cols.ret]); raw != "" {
		ret, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return Observation{}, fmt.Errorf("parse return: %w", err)
		}
	}

	return Observation{
		Date:      date,
		Coin:      coin,
		Close:     closePrice,
		Marketcap: marketcap,
		Return:    ret,
	}, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Truncate(24 * time.Hour), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", raw)
}
