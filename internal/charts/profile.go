package charts

import (
	"fmt"
	"io"

	"borelog/internal/profile"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
)

// profileLayout holds the pixel geometry shared by the PNG and SVG renderers.
type profileLayout struct {
	width, height int
	panelW        float64
	gap           float64
	left, top     float64
	plotH         float64
	legendTop     float64
	depth         axis
}

const (
	profilePanelW  = 170.0
	profilePanelG  = 24.0
	profileLeft    = 64.0
	profileTop     = 64.0
	profilePlotH   = 760.0
	profileLegendH = 18.0
)

func layoutProfile(p *profile.Profile) profileLayout {
	panels := 1 + len(p.Series)
	l := profileLayout{
		panelW: profilePanelW,
		gap:    profilePanelG,
		left:   profileLeft,
		top:    profileTop,
		plotH:  profilePlotH,
	}
	l.legendTop = l.top + l.plotH + 40
	l.width = int(l.left + float64(panels)*(l.panelW+l.gap) + 16)
	l.height = int(l.legendTop + float64(len(p.Legend))*profileLegendH + 24)

	// Depth grows downward.
	l.depth = newAxis(p.MinDepth, p.MaxDepth, l.top, l.top+l.plotH)
	return l
}

func (l profileLayout) panelX(i int) float64 {
	return l.left + float64(i)*(l.panelW+l.gap)
}

// RenderProfilePNG draws the depth profile as a PNG image.
func RenderProfilePNG(w io.Writer, p *profile.Profile) error {
	l := layoutProfile(p)
	dc := newCanvas(l.width, l.height)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(fmt.Sprintf("Borehole %s", p.Borehole), l.left, 20, 0, 0.5)

	// depth ticks and label
	ticks := niceTicks(l.depth.lo, l.depth.hi, 10)
	dc.SetColor(colorSubtle)
	for _, t := range ticks {
		y := l.depth.px(t)
		dc.DrawStringAnchored(formatTick(t), l.left-8, y, 1, 0.5)
	}
	drawRotatedLabel(dc, "Depth (m)", 14, l.top+l.plotH/2)

	// classification strip
	x0 := l.panelX(0)
	for _, layer := range p.Layers {
		y0 := l.depth.px(layer.Top)
		y1 := l.depth.px(layer.Bottom)
		c := layer.Color
		c.A = 0xb3
		dc.SetColor(c)
		dc.DrawRectangle(x0, y0, l.panelW, y1-y0)
		dc.Fill()
	}
	drawPanelFrame(dc, l, 0, "Classification")

	for i, s := range p.Series {
		drawSeriesPanel(dc, l, i+1, s, ticks)
	}

	// legend
	for i, e := range p.Legend {
		y := l.legendTop + float64(i)*profileLegendH
		dc.SetColor(e.Color)
		dc.DrawRectangle(l.left, y-6, 12, 12)
		dc.Fill()
		dc.SetColor(colorText)
		dc.DrawStringAnchored(e.Classification, l.left+20, y, 0, 0.5)
	}

	return dc.EncodePNG(w)
}

func drawPanelFrame(dc *gg.Context, l profileLayout, i int, title string) {
	x := l.panelX(i)
	dc.SetColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, l.top, l.panelW, l.plotH)
	dc.Stroke()
	dc.SetColor(colorText)
	dc.DrawStringAnchored(truncate(title, 22), x+l.panelW/2, l.top-14, 0.5, 0.5)
}

func drawSeriesPanel(dc *gg.Context, l profileLayout, i int, s profile.Series, depthTicks []float64) {
	x := l.panelX(i)
	lo, hi := s.ValueRange()
	values := newAxis(lo, hi, x, x+l.panelW).padded(0.08)

	// grid
	dc.SetColor(colorGrid)
	dc.SetLineWidth(1)
	for _, t := range depthTicks {
		y := l.depth.px(t)
		dc.DrawLine(x, y, x+l.panelW, y)
		dc.Stroke()
	}
	valueTicks := niceTicks(values.lo, values.hi, 4)
	for _, t := range valueTicks {
		px := values.px(t)
		dc.DrawLine(px, l.top, px, l.top+l.plotH)
		dc.Stroke()
	}
	dc.SetColor(colorSubtle)
	for _, t := range valueTicks {
		dc.DrawStringAnchored(formatTick(t), values.px(t), l.top+l.plotH+14, 0.5, 0.5)
	}

	if len(s.Points) > 0 {
		dc.SetColor(colorLine)
		dc.SetLineWidth(1.5)
		for k, pt := range s.Points {
			px, py := values.px(pt.X), l.depth.px(pt.Y)
			if k == 0 {
				dc.MoveTo(px, py)
			} else {
				dc.LineTo(px, py)
			}
		}
		dc.Stroke()
		for _, pt := range s.Points {
			dc.DrawCircle(values.px(pt.X), l.depth.px(pt.Y), 3)
			dc.Fill()
		}
	}

	drawPanelFrame(dc, l, i, s.Property)
}

// RenderProfileSVG draws the depth profile as an SVG document.
func RenderProfileSVG(w io.Writer, p *profile.Profile) error {
	l := layoutProfile(p)
	canvas := svg.New(w)
	canvas.Start(l.width, l.height)
	canvas.Rect(0, 0, l.width, l.height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	textStyle := fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText))
	subtleStyle := fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle))

	canvas.Text(int(l.left), 24, fmt.Sprintf("Borehole %s", p.Borehole), textStyle)

	ticks := niceTicks(l.depth.lo, l.depth.hi, 10)
	for _, t := range ticks {
		canvas.Text(int(l.left-8), int(l.depth.px(t))+4, formatTick(t), subtleStyle+";text-anchor:end")
	}
	cy := int(l.top + l.plotH/2)
	canvas.Text(18, cy, "Depth (m)", textStyle+fmt.Sprintf(";text-anchor:middle;transform-origin:18px %dpx;transform:rotate(-90deg)", cy))

	x0 := int(l.panelX(0))
	for _, layer := range p.Layers {
		y0 := int(l.depth.px(layer.Top))
		y1 := int(l.depth.px(layer.Bottom))
		canvas.Rect(x0, y0, int(l.panelW), max(y1-y0, 1),
			fmt.Sprintf("fill:%s;fill-opacity:0.7", css(layer.Color)))
	}

	panels := append([]string{"Classification"}, seriesNames(p.Series)...)
	for i, title := range panels {
		x := int(l.panelX(i))
		canvas.Rect(x, int(l.top), int(l.panelW), int(l.plotH),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(colorAxis)))
		canvas.Text(x+int(l.panelW/2), int(l.top-10), truncate(title, 22), textStyle+";text-anchor:middle")
	}

	for i, s := range p.Series {
		x := l.panelX(i + 1)
		lo, hi := s.ValueRange()
		values := newAxis(lo, hi, x, x+l.panelW).padded(0.08)
		for _, t := range niceTicks(values.lo, values.hi, 4) {
			canvas.Text(int(values.px(t)), int(l.top+l.plotH+16), formatTick(t), subtleStyle+";text-anchor:middle")
		}
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]int, len(s.Points))
		ys := make([]int, len(s.Points))
		for k, pt := range s.Points {
			xs[k] = int(values.px(pt.X))
			ys[k] = int(l.depth.px(pt.Y))
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5", css(colorLine)))
		for k := range xs {
			canvas.Circle(xs[k], ys[k], 3, fmt.Sprintf("fill:%s", css(colorLine)))
		}
	}

	for i, e := range p.Legend {
		y := int(l.legendTop + float64(i)*profileLegendH)
		canvas.Rect(int(l.left), y-6, 12, 12, fmt.Sprintf("fill:%s", css(e.Color)))
		canvas.Text(int(l.left)+20, y+4, e.Classification, textStyle)
	}

	canvas.End()
	return nil
}

func seriesNames(series []profile.Series) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Property
	}
	return out
}
