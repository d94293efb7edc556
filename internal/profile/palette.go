package profile

import "image/color"

// qualitative is the ten-colour "tab10" palette.
var qualitative = []color.RGBA{
	{0x1f, 0x77, 0xb4, 0xff},
	{0xff, 0x7f, 0x0e, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff},
	{0xd6, 0x27, 0x28, 0xff},
	{0x94, 0x67, 0xbd, 0xff},
	{0x8c, 0x56, 0x4b, 0xff},
	{0xe3, 0x77, 0xc2, 0xff},
	{0x7f, 0x7f, 0x7f, 0xff},
	{0xbc, 0xbd, 0x22, 0xff},
	{0x17, 0xbe, 0xcf, 0xff},
}

// Unclassified is used for layers without a recognised classification.
var Unclassified = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}

// Palette assigns stable colours to classification labels in the order they
// are first seen. Labels beyond the palette size reuse colours cyclically.
type Palette struct {
	order  []string
	colors map[string]color.RGBA
}

// NewPalette builds a palette for the given labels.
func NewPalette(labels []string) *Palette {
	p := &Palette{colors: make(map[string]color.RGBA)}
	for _, l := range labels {
		if _, ok := p.colors[l]; ok {
			continue
		}
		p.colors[l] = qualitative[len(p.order)%len(qualitative)]
		p.order = append(p.order, l)
	}
	return p
}

// Color returns the colour of a label, or Unclassified.
func (p *Palette) Color(label string) color.RGBA {
	if c, ok := p.colors[label]; ok {
		return c
	}
	return Unclassified
}

// Labels returns the labels in assignment order.
func (p *Palette) Labels() []string {
	return append([]string(nil), p.order...)
}
