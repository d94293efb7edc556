package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	maxHistogramBins = 1000
	kdeGridPoints    = 200
	whiskerFactor    = 1.5
)

// Point is an (x, y) pair on a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Histogram is a binned distribution with an optional smoothed density
// overlay. Edges has len(Counts)+1 entries; the last bin is closed.
type Histogram struct {
	Column string    `json:"column"`
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
	// Density is a Gaussian kernel density estimate scaled to counts, so it
	// can share the histogram's y axis. Empty when the data has no spread.
	Density []Point `json:"density,omitempty"`
}

// NewHistogram bins values with automatic bin selection: the narrower of the
// Sturges and Freedman-Diaconis widths, falling back to Sturges when the
// interquartile range is zero.
func NewHistogram(column string, values []float64) Histogram {
	h := Histogram{Column: column}
	values = finite(values)
	if len(values) == 0 {
		return h
	}

	sorted := sortedCopy(values)
	first, last := sorted[0], sorted[len(sorted)-1]
	if first == last {
		first -= 0.5
		last += 0.5
	}

	bins := 1
	if width := autoBinWidth(sorted); width > 0 {
		bins = int(math.Ceil((last - first) / width))
	}
	if bins < 1 {
		bins = 1
	}
	if bins > maxHistogramBins {
		bins = maxHistogramBins
	}

	h.Edges = make([]float64, bins+1)
	step := (last - first) / float64(bins)
	for i := range h.Edges {
		h.Edges[i] = first + float64(i)*step
	}
	h.Edges[bins] = last

	// gonum bins are half-open; nudge the outer edge so the maximum lands in
	// the last bin.
	dividers := append([]float64(nil), h.Edges...)
	dividers[bins] = math.Nextafter(last, math.Inf(1))
	h.Counts = stat.Histogram(nil, dividers, sorted, nil)

	h.Density = kde(sorted, step)
	return h
}

// BinWidth returns the common width of the bins.
func (h Histogram) BinWidth() float64 {
	if len(h.Edges) < 2 {
		return 0
	}
	return h.Edges[1] - h.Edges[0]
}

// MaxCount returns the tallest bin or density point.
func (h Histogram) MaxCount() float64 {
	m := 0.0
	for _, c := range h.Counts {
		m = math.Max(m, c)
	}
	for _, p := range h.Density {
		m = math.Max(m, p.Y)
	}
	return m
}

func autoBinWidth(sorted []float64) float64 {
	n := float64(len(sorted))
	ptp := sorted[len(sorted)-1] - sorted[0]
	sturges := ptp / (math.Log2(n) + 1)
	iqr := Quantile(sorted, 0.75) - Quantile(sorted, 0.25)
	fd := 2 * iqr * math.Pow(n, -1.0/3)
	if fd > 0 {
		return math.Min(fd, sturges)
	}
	return sturges
}

// kde evaluates a Gaussian kernel density estimate with Scott's bandwidth over
// the data range, scaled by n*binWidth.
func kde(sorted []float64, binWidth float64) []Point {
	n := len(sorted)
	sd := SampleStd(sorted)
	if n < 2 || math.IsNaN(sd) || sd == 0 {
		return nil
	}
	bw := sd * math.Pow(float64(n), -1.0/5)
	kernel := distuv.Normal{Mu: 0, Sigma: bw}

	lo, hi := sorted[0], sorted[n-1]
	step := (hi - lo) / float64(kdeGridPoints-1)
	scale := float64(n) * binWidth

	out := make([]Point, kdeGridPoints)
	for i := range out {
		x := lo + float64(i)*step
		sum := 0.0
		for _, v := range sorted {
			sum += kernel.Prob(x - v)
		}
		out[i] = Point{X: x, Y: sum / float64(n) * scale}
	}
	return out
}

// BoxStats is the five-number summary drawn by a box plot. Whiskers reach the
// most extreme values within 1.5 IQR of the quartiles; values beyond them are
// listed as outliers.
type BoxStats struct {
	Column       string    `json:"column"`
	Count        int       `json:"count"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// NewBoxStats computes the box plot summary of values.
func NewBoxStats(column string, values []float64) BoxStats {
	values = finite(values)
	b := BoxStats{Column: column, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		b.Q1, b.Median, b.Q3, b.LowerWhisker, b.UpperWhisker = nan, nan, nan, nan, nan
		return b
	}

	sorted := sortedCopy(values)
	b.Q1 = Quantile(sorted, 0.25)
	b.Median = Quantile(sorted, 0.5)
	b.Q3 = Quantile(sorted, 0.75)

	iqr := b.Q3 - b.Q1
	lowFence := b.Q1 - whiskerFactor*iqr
	highFence := b.Q3 + whiskerFactor*iqr

	b.LowerWhisker = b.Q1
	b.UpperWhisker = b.Q3
	for _, v := range sorted {
		if v >= lowFence {
			b.LowerWhisker = math.Min(v, b.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= highFence {
			b.UpperWhisker = math.Max(sorted[i], b.Q3)
			break
		}
	}
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}

// Range returns the smallest and largest value drawn on the plot.
func (b BoxStats) Range() (float64, float64) {
	lo, hi := b.LowerWhisker, b.UpperWhisker
	for _, o := range b.Outliers {
		lo = math.Min(lo, o)
		hi = math.Max(hi, o)
	}
	return lo, hi
}

func finite(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
