package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"borelog/internal/analysis"
)

var (
	coolwarmLow  = color.RGBA{0x3b, 0x4c, 0xc0, 0xff}
	coolwarmMid  = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	coolwarmHigh = color.RGBA{0xb4, 0x04, 0x26, 0xff}
	colorNaNCell = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// coolwarm maps t in [0, 1] onto a diverging blue-grey-red ramp.
func coolwarm(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	if t < 0.5 {
		return lerp(coolwarmLow, coolwarmMid, t*2)
	}
	return lerp(coolwarmMid, coolwarmHigh, (t-0.5)*2)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// RenderHeatmap draws an annotated correlation heatmap. The colour scale
// spans the observed coefficient range; undefined cells stay blank.
func RenderHeatmap(w io.Writer, m *analysis.CorrelationMatrix) error {
	n := len(m.Columns)
	if n == 0 {
		return fmt.Errorf("correlation matrix is empty")
	}

	const (
		cell   = 56.0
		left   = 170.0
		top    = 48.0
		bottom = 150.0
		barW   = 18.0
	)
	width := int(left + float64(n)*cell + 90)
	height := int(top + float64(n)*cell + bottom)
	dc := newCanvas(width, height)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range m.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	scale := func(v float64) float64 {
		if hi <= lo {
			return 0.5
		}
		return (v - lo) / (hi - lo)
	}

	dc.SetColor(colorText)
	dc.DrawStringAnchored("Correlation Heatmap", left, 20, 0, 0.5)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := left + float64(j)*cell
			y := top + float64(i)*cell
			v := m.Values[i][j]
			if math.IsNaN(v) {
				dc.SetColor(colorNaNCell)
			} else {
				dc.SetColor(coolwarm(scale(v)))
			}
			dc.DrawRectangle(x, y, cell, cell)
			dc.Fill()
			if math.IsNaN(v) {
				continue
			}
			if t := scale(v); t < 0.2 || t > 0.8 {
				dc.SetColor(colorBackdrop)
			} else {
				dc.SetColor(colorText)
			}
			dc.DrawStringAnchored(fmt.Sprintf("%.2f", v), x+cell/2, y+cell/2, 0.5, 0.5)
		}
	}

	dc.SetColor(colorText)
	for i, c := range m.Columns {
		dc.DrawStringAnchored(truncate(c, 22), left-8, top+float64(i)*cell+cell/2, 1, 0.5)
		x := left + float64(i)*cell + cell/2
		y := top + float64(n)*cell + 8
		dc.Push()
		dc.RotateAbout(math.Pi/2, x, y)
		dc.DrawStringAnchored(truncate(c, 20), x, y, 0, 0.5)
		dc.Pop()
	}

	// colour bar
	if lo <= hi {
		barX := left + float64(n)*cell + 24
		barH := float64(n) * cell
		steps := int(barH)
		for k := 0; k < steps; k++ {
			t := 1 - float64(k)/float64(steps)
			dc.SetColor(coolwarm(t))
			dc.DrawRectangle(barX, top+float64(k), barW, 1)
			dc.Fill()
		}
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", hi), barX+barW+4, top, 0, 0.5)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", lo), barX+barW+4, top+barH, 0, 0.5)
	}

	return dc.EncodePNG(w)
}
