// Package profile lays out the depth profile of a single borehole: a strip of
// classification layers plus one line series per geotechnical property, all
// sharing a depth axis that grows downward.
package profile

import (
	"image/color"
	"math"

	"borelog/domain/borehole"
	"borelog/internal/analysis"
	"borelog/internal/errors"
)

// Layer is one depth interval of the classification strip, [Top, Bottom).
type Layer struct {
	Top            float64    `json:"top"`
	Bottom         float64    `json:"bottom"`
	Classification string     `json:"classification"`
	Color          color.RGBA `json:"-"`
}

// Height returns the thickness of the layer.
func (l Layer) Height() float64 { return l.Bottom - l.Top }

// Series is one property plotted against depth. Points hold X=value, Y=depth
// in depth order.
type Series struct {
	Property string           `json:"property"`
	Points   []analysis.Point `json:"points"`
}

// LegendEntry pairs a classification with its strip colour.
type LegendEntry struct {
	Classification string     `json:"classification"`
	Color          color.RGBA `json:"-"`
}

// Profile is the renderer-independent layout of a depth profile.
type Profile struct {
	Borehole string        `json:"borehole"`
	MinDepth float64       `json:"min_depth"`
	MaxDepth float64       `json:"max_depth"`
	Layers   []Layer       `json:"layers"`
	Legend   []LegendEntry `json:"legend"`
	Series   []Series      `json:"series"`
	// Skipped counts intervals with a non-positive height.
	Skipped int `json:"skipped"`
}

// ErrNoData is returned when the borehole subset has no usable rows.
var ErrNoData = errors.New(errors.CodeNotFound, "no data found for selected borehole")

// Build lays out the profile of a borehole subset. Candidates are the property
// columns to plot; only those present and numeric in the table are kept.
func Build(subset *borehole.Table, candidates []string) (*Profile, error) {
	schema := subset.Schema()
	if missing := schema.Missing(borehole.ColumnBorehole, borehole.ColumnDepth); len(missing) > 0 {
		return nil, errors.SchemaMissing(missing...)
	}

	rows := analysis.SortByDepth(analysis.DropMissingDepth(subset))
	if rows.Empty() {
		return nil, ErrNoData
	}

	if !schema.HasClassification {
		return nil, errors.SchemaMissing(borehole.ColumnClassification)
	}

	records := rows.Records()
	props := schema.PresentNumeric(candidates)

	var labels []string
	for _, r := range records {
		if r.Classification != nil {
			labels = append(labels, *r.Classification)
		}
	}
	palette := NewPalette(labels)

	p := &Profile{
		MinDepth: *records[0].Depth,
		MaxDepth: *records[len(records)-1].Depth,
	}
	if id := records[0].Borehole; id != nil {
		p.Borehole = *id
	}
	for _, l := range palette.Labels() {
		p.Legend = append(p.Legend, LegendEntry{Classification: l, Color: palette.Color(l)})
	}

	for i, r := range records {
		top := *r.Depth
		bottom := p.MaxDepth
		if i+1 < len(records) {
			bottom = *records[i+1].Depth
		}
		if bottom-top <= 0 {
			p.Skipped++
			continue
		}

		layer := Layer{Top: top, Bottom: bottom, Color: Unclassified}
		if r.Classification != nil {
			layer.Classification = *r.Classification
			layer.Color = palette.Color(*r.Classification)
		}
		p.Layers = append(p.Layers, layer)
	}

	for _, prop := range props {
		s := Series{Property: prop}
		for _, r := range records {
			if v, ok := r.Properties[prop]; ok && !math.IsInf(v, 0) {
				s.Points = append(s.Points, analysis.Point{X: v, Y: *r.Depth})
			}
		}
		p.Series = append(p.Series, s)
	}

	return p, nil
}

// ValueRange returns the extent of a series' values.
func (s Series) ValueRange() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pt := range s.Points {
		lo = math.Min(lo, pt.X)
		hi = math.Max(hi, pt.X)
	}
	return lo, hi
}
