// internal/tabular/profile.go
package tabular

import (
	"math"
	"strconv"
)

const (
	// zScoreThreshold marks a numeric value anomalous.
	zScoreThreshold = 3.0
	// maxAnomalies caps the reported anomalies per column, in row order.
	maxAnomalies = 10
	// numericShare is the fraction of present values that must parse as
	// finite numbers for a column to count as numeric.
	numericShare = 0.6
	// numericFloor is the minimum absolute number of numeric values.
	numericFloor = 3
)

// Anomaly is one outlying numeric cell.
type Anomaly struct {
	Row    int     `json:"row"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"zscore"`
}

// NumericStats summarizes a column classified as numeric.
type NumericStats struct {
	Mean      float64   `json:"mean"`
	Std       float64   `json:"std"`
	Anomalies []Anomaly `json:"anomalies"`
}

// ColumnProfile describes one column of a parsed table. Numeric is nil for
// columns that fail numeric classification.
type ColumnProfile struct {
	Header   string        `json:"header"`
	Count    int           `json:"count"`
	Distinct int           `json:"distinct"`
	Numeric  *NumericStats `json:"numeric,omitempty"`
}

// Profile summarizes a whole table.
type Profile struct {
	Rows    int             `json:"rows"`
	Columns int             `json:"columns"`
	Summary []ColumnProfile `json:"summary"`
}

// ProfileTable computes per-column statistics. Cells missing from short rows
// are treated as absent and excluded from all counts. A column is numeric
// when at least max(3, 60% of present values) parse as finite numbers; its
// anomalies are the values with |z| >= 3, capped at 10, in row order.
func ProfileTable(t Table) Profile {
	summary := make([]ColumnProfile, len(t.Headers))
	for col, header := range t.Headers {
		var values []string
		var nums []float64
		var numRows []int
		for rowIdx, row := range t.Rows {
			if col >= len(row) {
				continue
			}
			v := row[col]
			values = append(values, v)
			if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
				nums = append(nums, f)
				numRows = append(numRows, rowIdx)
			}
		}

		distinct := make(map[string]struct{}, len(values))
		for _, v := range values {
			distinct[v] = struct{}{}
		}
		prof := ColumnProfile{Header: header, Count: len(values), Distinct: len(distinct)}

		floor := int(math.Floor(float64(len(values)) * numericShare))
		if floor < numericFloor {
			floor = numericFloor
		}
		if len(nums) >= floor {
			prof.Numeric = numericStats(nums, numRows)
		}
		summary[col] = prof
	}
	return Profile{Rows: len(t.Rows), Columns: len(t.Headers), Summary: summary}
}

func numericStats(nums []float64, rows []int) *NumericStats {
	mean := 0.0
	for _, v := range nums {
		mean += v
	}
	mean /= float64(len(nums))

	variance := 0.0
	for _, v := range nums {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(nums)))

	stats := &NumericStats{Mean: mean, Std: std}
	if std == 0 {
		return stats
	}
	for i, v := range nums {
		z := math.Abs((v - mean) / std)
		if z < zScoreThreshold {
			continue
		}
		stats.Anomalies = append(stats.Anomalies, Anomaly{Row: rows[i], Value: v, ZScore: z})
		if len(stats.Anomalies) >= maxAnomalies {
			break
		}
	}
	return stats
}
