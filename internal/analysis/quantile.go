package analysis

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of sorted data using linear interpolation
// between closest ranks, h = (n-1)p. This is the default of numpy and pandas,
// which montanaflynn/stats and gonum/stat do not provide.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func sortedCopy(values []float64) []float64 {
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	return out
}
