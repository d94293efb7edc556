package analysis

import (
	"math"

	"borelog/domain/borehole"
	"borelog/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix is a symmetric matrix of Pearson coefficients. Values[i][j]
// is NaN when the pair has fewer than two complete observations or either
// side has no variance.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlate computes pairwise Pearson correlation across numeric columns,
// using for each pair only the rows where both values are present.
func Correlate(t *borehole.Table) (*CorrelationMatrix, error) {
	numeric := t.Schema().Numeric
	if len(numeric) == 0 {
		return nil, errors.New(errors.CodeSchemaMissing, "no numeric columns found in the uploaded file")
	}

	// Column-major view with presence flags so each pair can pick its rows.
	values := make([][]float64, len(numeric))
	present := make([][]bool, len(numeric))
	for k, col := range numeric {
		values[k] = make([]float64, t.Len())
		present[k] = make([]bool, t.Len())
		for i := range t.Rows {
			values[k][i], present[k][i] = t.Float(i, col)
		}
	}

	m := &CorrelationMatrix{
		Columns: numeric,
		Values:  make([][]float64, len(numeric)),
	}
	for i := range numeric {
		m.Values[i] = make([]float64, len(numeric))
	}

	for i := range numeric {
		for j := i; j < len(numeric); j++ {
			r := pairwisePearson(values[i], present[i], values[j], present[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// At returns the coefficient between two named columns.
func (m *CorrelationMatrix) At(a, b string) float64 {
	ia, ib := -1, -1
	for k, c := range m.Columns {
		if c == a {
			ia = k
		}
		if c == b {
			ib = k
		}
	}
	if ia < 0 || ib < 0 {
		return math.NaN()
	}
	return m.Values[ia][ib]
}

func pairwisePearson(x []float64, xok []bool, y []float64, yok []bool) float64 {
	var xs, ys []float64
	for i := range x {
		if xok[i] && yok[i] {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	// Guard against rounding drift outside [-1, 1].
	return math.Max(-1, math.Min(1, r))
}
