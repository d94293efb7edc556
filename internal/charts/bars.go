package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"borelog/internal/analysis"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Ramp is a sequential colour scale sampled at evenly spaced stops.
type Ramp []color.RGBA

var (
	Viridis = Ramp{
		{0x44, 0x01, 0x54, 0xff},
		{0x3b, 0x52, 0x8b, 0xff},
		{0x21, 0x91, 0x8c, 0xff},
		{0x5e, 0xc9, 0x62, 0xff},
		{0xfd, 0xe7, 0x25, 0xff},
	}
	Plasma = Ramp{
		{0x0d, 0x08, 0x87, 0xff},
		{0x7e, 0x03, 0xa8, 0xff},
		{0xcc, 0x47, 0x78, 0xff},
		{0xf8, 0x95, 0x40, 0xff},
		{0xf0, 0xf9, 0x21, 0xff},
	}
)

// At samples the ramp at t in [0, 1].
func (r Ramp) At(t float64) color.RGBA {
	if len(r) == 1 {
		return r[0]
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(r)-1)
	i := int(math.Floor(pos))
	if i >= len(r)-1 {
		return r[len(r)-1]
	}
	return lerp(r[i], r[i+1], pos-float64(i))
}

// Bar is one labelled value of a bar chart.
type Bar struct {
	Label string
	Value float64
}

// MissingBars lists missing percentages in descending order.
func MissingBars(rel *analysis.Reliability) []Bar {
	rows := rel.SortedByMissing()
	out := make([]Bar, len(rows))
	for i, r := range rows {
		out[i] = Bar{Label: r.Column, Value: r.MissingPct}
	}
	return out
}

// COVBars lists defined coefficients of variation in descending order.
func COVBars(rel *analysis.Reliability) []Bar {
	rows := rel.SortedByCOV()
	out := make([]Bar, len(rows))
	for i, r := range rows {
		out[i] = Bar{Label: r.Column, Value: *r.COV}
	}
	return out
}

// RenderBars draws a vertical bar chart with rotated category labels. Bars are
// coloured along the ramp in the order given.
func RenderBars(w io.Writer, title, unit string, bars []Bar, ramp Ramp) error {
	if len(bars) == 0 {
		return fmt.Errorf("no values to plot for %s", title)
	}

	top, bottom := 1.0, 0.0
	values := make([]chart.Value, len(bars))
	for i, b := range bars {
		if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) {
			return fmt.Errorf("%s: value of %s is not finite", title, b.Label)
		}
		top = math.Max(top, b.Value)
		bottom = math.Min(bottom, b.Value)
		t := 0.0
		if len(bars) > 1 {
			t = float64(i) / float64(len(bars)-1)
		}
		c := ramp.At(t)
		fill := drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
		values[i] = chart.Value{
			Label: truncate(b.Label, 24),
			Value: b.Value,
			Style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    max(640, 56*len(bars)+160),
		Height:   520,
		BarWidth: 36,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 140},
		},
		XAxis: chart.Style{TextRotationDegrees: 90},
		YAxis: chart.YAxis{
			Name:  unit,
			Range: &chart.ContinuousRange{Min: bottom * 1.05, Max: top * 1.05},
		},
		Bars: values,
	}
	return graph.Render(chart.PNG, w)
}
