package charts

import (
	"fmt"
	"io"

	"borelog/internal/analysis"

	"git.sr.ht/~sbinet/gg"
)

const (
	distWidth  = 720
	distHeight = 440
	distLeft   = 64.0
	distRight  = 24.0
	distTop    = 44.0
	distBottom = 56.0
)

// RenderHistogram draws binned counts with the density overlay.
func RenderHistogram(w io.Writer, h analysis.Histogram) error {
	if len(h.Counts) == 0 {
		return fmt.Errorf("no values to plot for %s", h.Column)
	}

	dc := newCanvas(distWidth, distHeight)
	plotR := float64(distWidth) - distRight
	plotB := float64(distHeight) - distBottom

	xs := newAxis(h.Edges[0], h.Edges[len(h.Edges)-1], distLeft, plotR)
	ys := newAxis(0, h.MaxCount()*1.05, plotB, distTop)

	dc.SetColor(colorGrid)
	dc.SetLineWidth(1)
	yTicks := niceTicks(ys.lo, ys.hi, 6)
	for _, t := range yTicks {
		dc.DrawLine(distLeft, ys.px(t), plotR, ys.px(t))
		dc.Stroke()
	}

	for i, c := range h.Counts {
		x0 := xs.px(h.Edges[i])
		x1 := xs.px(h.Edges[i+1])
		y := ys.px(c)
		dc.SetColor(colorSkyBlue)
		dc.DrawRectangle(x0, y, x1-x0, plotB-y)
		dc.Fill()
		dc.SetColor(colorAxis)
		dc.SetLineWidth(0.8)
		dc.DrawRectangle(x0, y, x1-x0, plotB-y)
		dc.Stroke()
	}

	if len(h.Density) > 1 {
		dc.SetColor(colorKDE)
		dc.SetLineWidth(2)
		for k, p := range h.Density {
			if k == 0 {
				dc.MoveTo(xs.px(p.X), ys.px(p.Y))
			} else {
				dc.LineTo(xs.px(p.X), ys.px(p.Y))
			}
		}
		dc.Stroke()
	}

	drawFrame(dc, xs, ys, plotR, plotB, yTicks)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(fmt.Sprintf("Histogram of %s", h.Column), float64(distWidth)/2, 20, 0.5, 0.5)
	dc.DrawStringAnchored(h.Column, float64(distWidth)/2, float64(distHeight)-14, 0.5, 0.5)
	drawRotatedLabel(dc, "Count", 14, (distTop+plotB)/2)

	return dc.EncodePNG(w)
}

func drawFrame(dc *gg.Context, xs, ys axis, plotR, plotB float64, yTicks []float64) {
	dc.SetColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawRectangle(xs.p0, ys.p1, plotR-xs.p0, plotB-ys.p1)
	dc.Stroke()

	dc.SetColor(colorSubtle)
	for _, t := range yTicks {
		dc.DrawStringAnchored(formatTick(t), xs.p0-6, ys.px(t), 1, 0.5)
	}
	for _, t := range niceTicks(xs.lo, xs.hi, 8) {
		dc.DrawStringAnchored(formatTick(t), xs.px(t), plotB+14, 0.5, 0.5)
	}
}

// RenderBoxPlot draws a horizontal box plot with whiskers and outlier points.
func RenderBoxPlot(w io.Writer, b analysis.BoxStats) error {
	if b.Count == 0 {
		return fmt.Errorf("no values to plot for %s", b.Column)
	}

	dc := newCanvas(distWidth, distHeight)
	plotR := float64(distWidth) - distRight
	plotB := float64(distHeight) - distBottom

	lo, hi := b.Range()
	xs := newAxis(lo, hi, distLeft, plotR).padded(0.05)
	mid := (distTop + plotB) / 2
	half := (plotB - distTop) * 0.2

	xTicks := niceTicks(xs.lo, xs.hi, 8)
	dc.SetColor(colorGrid)
	dc.SetLineWidth(1)
	for _, t := range xTicks {
		dc.DrawLine(xs.px(t), distTop, xs.px(t), plotB)
		dc.Stroke()
	}

	q1, q3 := xs.px(b.Q1), xs.px(b.Q3)
	dc.SetColor(colorBoxFill)
	dc.DrawRectangle(q1, mid-half, q3-q1, 2*half)
	dc.Fill()

	dc.SetColor(colorAxis)
	dc.SetLineWidth(1.5)
	dc.DrawRectangle(q1, mid-half, q3-q1, 2*half)
	dc.Stroke()
	dc.DrawLine(xs.px(b.Median), mid-half, xs.px(b.Median), mid+half)
	dc.Stroke()

	// whiskers and caps
	lw, uw := xs.px(b.LowerWhisker), xs.px(b.UpperWhisker)
	dc.DrawLine(lw, mid, q1, mid)
	dc.DrawLine(q3, mid, uw, mid)
	dc.DrawLine(lw, mid-half/2, lw, mid+half/2)
	dc.DrawLine(uw, mid-half/2, uw, mid+half/2)
	dc.Stroke()

	for _, o := range b.Outliers {
		dc.DrawCircle(xs.px(o), mid, 4)
		dc.Stroke()
	}

	dc.SetColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawRectangle(distLeft, distTop, plotR-distLeft, plotB-distTop)
	dc.Stroke()
	dc.SetColor(colorSubtle)
	for _, t := range xTicks {
		dc.DrawStringAnchored(formatTick(t), xs.px(t), plotB+14, 0.5, 0.5)
	}

	dc.SetColor(colorText)
	dc.DrawStringAnchored(fmt.Sprintf("Box Plot of %s", b.Column), float64(distWidth)/2, 20, 0.5, 0.5)
	dc.DrawStringAnchored(b.Column, float64(distWidth)/2, float64(distHeight)-14, 0.5, 0.5)

	return dc.EncodePNG(w)
}
