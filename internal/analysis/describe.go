package analysis

import (
	"math"

	"borelog/domain/borehole"
	"borelog/internal/errors"

	"github.com/montanaflynn/stats"
)

// ColumnSummary holds the descriptive statistics of one numeric column.
// Undefined statistics (empty column, single value for Std) are NaN.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max for every numeric column. A table without numeric columns yields a
// SCHEMA_MISSING error.
func Describe(t *borehole.Table) ([]ColumnSummary, error) {
	numeric := t.Schema().Numeric
	if len(numeric) == 0 {
		return nil, errors.New(errors.CodeSchemaMissing, "no numeric columns found in the uploaded file")
	}

	out := make([]ColumnSummary, 0, len(numeric))
	for _, col := range numeric {
		out = append(out, Summarize(col, t.Floats(col)))
	}
	return out, nil
}

// Summarize computes the descriptive statistics of a set of values.
func Summarize(column string, values []float64) ColumnSummary {
	s := ColumnSummary{
		Column: column,
		Count:  len(values),
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Min:    math.NaN(),
		Q1:     math.NaN(),
		Median: math.NaN(),
		Q3:     math.NaN(),
		Max:    math.NaN(),
	}
	if len(values) == 0 {
		return s
	}

	s.Mean = Mean(values)
	s.Std = SampleStd(values)
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	s.Median, _ = stats.Median(values)

	sorted := sortedCopy(values)
	s.Q1 = Quantile(sorted, 0.25)
	s.Q3 = Quantile(sorted, 0.75)
	return s
}

// Mean returns the arithmetic mean, or NaN for no values.
func Mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return math.NaN()
	}
	return m
}

// SampleStd returns the standard deviation with one delta degree of freedom.
// Fewer than two values give NaN.
func SampleStd(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return math.NaN()
	}
	return sd
}

// DistinctCount returns the number of distinct values.
func DistinctCount(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
