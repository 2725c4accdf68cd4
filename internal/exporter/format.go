package exporter

import (
	"fmt"
	"math"
	"time"
)

// formatFloat renders a value for report output with six decimal places.
// NaN renders as an empty cell rather than the literal "NaN", which Excel
// and most CSV consumers choke on.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return fmt.Sprintf("%.6f", f)
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
