// Package charts renders analysis results to PNG and SVG images. Drawing is
// done with gg and svgo on plain layouts computed by the analysis and profile
// packages; bar charts are delegated to go-chart.
package charts

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorAxis     = color.RGBA{0x33, 0x33, 0x33, 0xff}
	colorGrid     = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorLine     = color.RGBA{0x1f, 0x77, 0xb4, 0xff}
	colorSkyBlue  = color.RGBA{0x87, 0xce, 0xeb, 0xff}
	colorKDE      = color.RGBA{0x1f, 0x4e, 0x79, 0xff}
	colorBoxFill  = color.RGBA{0x90, 0xee, 0x90, 0xff}
)

// Renderer draws an image into w.
type Renderer func(w io.Writer) error

// Bytes runs a renderer into memory.
func Bytes(render Renderer) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURI encodes PNG bytes as an inline data link target.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

func newCanvas(width, height int) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	return dc
}

// axis maps a data interval onto a pixel interval. Passing p0 > p1 flips the
// direction, which is how vertical value axes grow upward.
type axis struct {
	lo, hi float64
	p0, p1 float64
}

func newAxis(lo, hi, p0, p1 float64) axis {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		lo, hi = 0, 1
	}
	if hi <= lo {
		lo, hi = lo-0.5, hi+0.5
	}
	return axis{lo: lo, hi: hi, p0: p0, p1: p1}
}

func (a axis) px(v float64) float64 {
	t := (v - a.lo) / (a.hi - a.lo)
	return a.p0 + t*(a.p1-a.p0)
}

// padded widens the axis by a fraction of its span on both ends.
func (a axis) padded(frac float64) axis {
	d := (a.hi - a.lo) * frac
	a.lo -= d
	a.hi += d
	return a
}

// niceTicks returns roughly n evenly spaced round values covering [lo, hi].
func niceTicks(lo, hi float64, n int) []float64 {
	if hi <= lo || n < 2 {
		return []float64{lo}
	}
	raw := (hi - lo) / float64(n-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	var step float64
	switch r := raw / mag; {
	case r < 1.5:
		step = mag
	case r < 3:
		step = 2 * mag
	case r < 7:
		step = 5 * mag
	default:
		step = 10 * mag
	}
	var out []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		out = append(out, v)
	}
	return out
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.Abs(v) >= 1e5 || math.Abs(v) < 1e-3 {
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// drawRotatedLabel draws s rotated by -90 degrees centred on (x, y).
func drawRotatedLabel(dc *gg.Context, s string, x, y float64) {
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), x, y)
	dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
	dc.Pop()
}
