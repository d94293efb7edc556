package analysis

import (
	"math"
	"sort"

	"borelog/domain/borehole"
	"borelog/internal/errors"
)

// Thresholds above which a column is flagged as unreliable.
type Thresholds struct {
	MissingPct float64 `json:"missing_pct"`
	COVPct     float64 `json:"cov_pct"`
}

// DefaultThresholds flags more than 20% missing values or a COV above 100%.
func DefaultThresholds() Thresholds {
	return Thresholds{MissingPct: 20, COVPct: 100}
}

// ReliabilityRow describes the data quality of one numeric column.
type ReliabilityRow struct {
	Column     string  `json:"column"`
	MissingPct float64 `json:"missing_pct"`
	// COV is nil when the coefficient of variation is undefined: zero mean,
	// or at most one distinct value.
	COV *float64 `json:"cov_pct"`
}

// Reliability is the data-quality summary over every numeric column.
type Reliability struct {
	Rows        []ReliabilityRow `json:"rows"`
	HighMissing []ReliabilityRow `json:"high_missing"`
	HighCOV     []ReliabilityRow `json:"high_cov"`
	Thresholds  Thresholds       `json:"thresholds"`
}

// AssessReliability computes missing percentage and coefficient of variation
// per numeric column and flags the columns that exceed the thresholds.
func AssessReliability(t *borehole.Table, th Thresholds) (*Reliability, error) {
	numeric := t.Schema().Numeric
	if len(numeric) == 0 {
		return nil, errors.New(errors.CodeSchemaMissing, "no numeric columns found in the uploaded file")
	}

	r := &Reliability{Thresholds: th}
	for _, col := range numeric {
		row := ReliabilityRow{
			Column:     col,
			MissingPct: MissingPct(t.MissingCount(col), t.Len()),
			COV:        COV(t.Floats(col)),
		}
		r.Rows = append(r.Rows, row)

		if row.MissingPct > th.MissingPct {
			r.HighMissing = append(r.HighMissing, row)
		}
		if row.COV != nil && *row.COV > th.COVPct {
			r.HighCOV = append(r.HighCOV, row)
		}
	}
	return r, nil
}

// MissingPct returns 100*missing/total, or 0 for an empty table.
func MissingPct(missing, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(missing) / float64(total)
}

// COV returns the coefficient of variation (sample std / mean * 100) of the
// present values. It is undefined (nil) when the mean is zero or not finite,
// when the values hold at most one distinct number, or when the ratio itself
// is not finite.
func COV(values []float64) *float64 {
	if DistinctCount(values) <= 1 {
		return nil
	}
	mean := Mean(values)
	if mean == 0 || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil
	}
	cov := SampleStd(values) / mean * 100
	if math.IsNaN(cov) || math.IsInf(cov, 0) {
		return nil
	}
	return &cov
}

// SortedByMissing returns rows ordered by missing percentage, highest first.
func (r *Reliability) SortedByMissing() []ReliabilityRow {
	out := append([]ReliabilityRow(nil), r.Rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MissingPct > out[j].MissingPct
	})
	return out
}

// SortedByCOV returns rows with a defined COV, highest first.
func (r *Reliability) SortedByCOV() []ReliabilityRow {
	var out []ReliabilityRow
	for _, row := range r.Rows {
		if row.COV != nil {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].COV > *out[j].COV
	})
	return out
}
