package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"cryptopulse/internal/dataset"
)

// ReturnMatrix is the dataset pivoted into a date-indexed table: one row per
// distinct date (ascending), one column per coin, cells holding the daily
// return or NaN where no observation exists for that (date, coin) pair. It
// is an intermediate for correlation only.
type ReturnMatrix struct {
	Dates []time.Time
	Coins []string
	cells [][]float64 // [row][col]
}

// NewReturnMatrix pivots a dataset into a return matrix.
func NewReturnMatrix(ds *dataset.Dataset) *ReturnMatrix {
	coins := ds.Coins()
	colIdx := make(map[string]int, len(coins))
	for i, coin := range coins {
		colIdx[coin] = i
	}

	dateSet := make(map[time.Time]struct{})
	for _, coin := range coins {
		series, err := ds.Select(coin)
		if err != nil {
			continue
		}
		for _, obs := range series.Observations {
			dateSet[obs.Date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rowIdx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rowIdx[d] = i
	}

	cells := make([][]float64, len(dates))
	for i := range cells {
		row := make([]float64, len(coins))
		for j := range row {
			row[j] = math.NaN()
		}
		cells[i] = row
	}

	for _, coin := range coins {
		series, _ := ds.Select(coin)
		col := colIdx[coin]
		for _, obs := range series.Observations {
			cells[rowIdx[obs.Date]][col] = obs.Return
		}
	}

	return &ReturnMatrix{Dates: dates, Coins: coins, cells: cells}
}

// DropIncomplete returns a matrix containing only the rows where every coin
// has a return value. The degenerate result (zero rows) is valid; pairwise
// correlations over it come out as NaN, not as errors.
func (m *ReturnMatrix) DropIncomplete() *ReturnMatrix {
	out := &ReturnMatrix{Coins: m.Coins}
	for i, row := range m.cells {
		complete := true
		for _, v := range row {
			if math.IsNaN(v) {
				complete = false
				break
			}
		}
		if complete {
			out.Dates = append(out.Dates, m.Dates[i])
			out.cells = append(out.cells, row)
		}
	}
	return out
}

// Rows returns the number of date rows in the matrix.
func (m *ReturnMatrix) Rows() int { return len(m.cells) }

// column returns the values of one coin column, aligned with Dates.
func (m *ReturnMatrix) column(col int) []float64 {
	out := make([]float64, len(m.cells))
	for i, row := range m.cells {
		out[i] = row[col]
	}
	return out
}

// CorrelationEntry is one coin's Pearson correlation against the selected
// coin. Coefficient is NaN when the pair has fewer than two overlapping
// observations or either side has zero variance. Samples counts the
// overlapping observations the coefficient was computed from.
type CorrelationEntry struct {
	Coin        string  `json:"coin"`
	Coefficient float64 `json:"-"`
	Samples     int     `json:"samples"`
}

// CorrelationVector maps every coin (the selected coin included, at exactly
// 1.0) to its correlation with the selected coin, sorted descending by
// coefficient with NaN entries last.
type CorrelationVector []CorrelationEntry

// CorrelationFor computes the selected coin's return correlation against
// all coins in the dataset.
//
// With dropIncomplete set, only dates where every coin has a return are
// used (complete-case). Otherwise each pair is correlated pairwise over the
// dates where both coins have a return, which matches the behavior of the
// usual dataframe correlation routines.
func CorrelationFor(ds *dataset.Dataset, coin string, dropIncomplete bool) (CorrelationVector, error) {
	matrix := NewReturnMatrix(ds)
	if dropIncomplete {
		matrix = matrix.DropIncomplete()
	}

	target := -1
	for i, c := range matrix.Coins {
		if c == coin {
			target = i
			break
		}
	}
	if target == -1 {
		return nil, fmt.Errorf("correlation for %q: %w", coin, dataset.ErrUnknownCoin)
	}

	targetCol := matrix.column(target)
	vector := make(CorrelationVector, 0, len(matrix.Coins))
	for i, other := range matrix.Coins {
		coef, samples := pearson(targetCol, matrix.column(i))
		if i == target && !math.IsNaN(coef) {
			coef = 1.0 // self-correlation, exact by definition
		}
		vector = append(vector, CorrelationEntry{
			Coin:        other,
			Coefficient: coef,
			Samples:     samples,
		})
	}

	sort.SliceStable(vector, func(i, j int) bool {
		return greaterWithNaNLast(vector[i].Coefficient, vector[j].Coefficient)
	})

	return vector, nil
}

// greaterWithNaNLast orders descending with NaN values after all real
// values.
func greaterWithNaNLast(a, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	default:
		return a > b
	}
}

// pearson computes the Pearson coefficient over the positions where both
// series are non-NaN. It returns NaN (never an error) for degenerate pairs.
func pearson(x, y []float64) (float64, int) {
	var xs, ys []float64
	for i := range x {
		if !math.IsNaN(x[i]) && !math.IsNaN(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	if len(xs) < 2 {
		return math.NaN(), len(xs)
	}
	return stat.Correlation(xs, ys, nil), len(xs)
}
