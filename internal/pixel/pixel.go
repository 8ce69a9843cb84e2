// Package pixel defines the linear RGB value carried by colour buffers.
package pixel

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Color is a linear RGB triple. Components are not clamped.
type Color struct{ R, G, B float32 }

func New(r, g, b float32) Color { return Color{R: r, G: g, B: b} }

// Grey returns a colour with all three channels set to v.
func Grey(v float32) Color { return Color{v, v, v} }

func (c Color) Add(o Color) Color { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }

func (c Color) Mul(o Color) Color { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }

func (c Color) Scale(s float32) Color { return Color{c.R * s, c.G * s, c.B * s} }

func (c Color) Min(o Color) Color {
	return Color{math32.Min(c.R, o.R), math32.Min(c.G, o.G), math32.Min(c.B, o.B)}
}

func (c Color) Max(o Color) Color {
	return Color{math32.Max(c.R, o.R), math32.Max(c.G, o.G), math32.Max(c.B, o.B)}
}

// Invert returns 1-c per channel.
func (c Color) Invert() Color { return Color{1 - c.R, 1 - c.G, 1 - c.B} }

// Lerp moves from c toward o by pos; pos 0 is c and 1 is o.
func (c Color) Lerp(o Color, pos float32) Color {
	return Color{
		R: c.R*(1-pos) + o.R*pos,
		G: c.G*(1-pos) + o.G*pos,
		B: c.B*(1-pos) + o.B*pos,
	}
}

// Brightness is the mean of the three channels.
func (c Color) Brightness() float32 { return (c.R + c.G + c.B) / 3 }

// Hex formats the colour as $rrggbb, truncating each channel to a byte.
func (c Color) Hex() string {
	return fmt.Sprintf("$%02x%02x%02x", To255(c.R), To255(c.G), To255(c.B))
}

// To255 clamps x into [0,1] and scales it to a byte.
func To255(x float32) byte {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return byte(x * 255.0)
}

// FromHSV converts hue (wrapped into [0,1)), saturation and value to RGB
// using the six-sector decomposition.
func FromHSV(hue, sat, value float32) Color {
	chr := value * sat
	hp := remEuclid(hue, 1) * 6
	xp := chr * (1 - math32.Abs(remEuclid(hp, 2)-1))
	var r, g, b float32
	switch int(hp) {
	case 0, 6:
		r, g, b = chr, xp, 0
	case 1:
		r, g, b = xp, chr, 0
	case 2:
		r, g, b = 0, chr, xp
	case 3:
		r, g, b = 0, xp, chr
	case 4:
		r, g, b = xp, 0, chr
	case 5:
		r, g, b = chr, 0, xp
	default:
		// NaN hue
		return Color{}
	}
	m := value - chr
	return Color{r + m, g + m, b + m}
}

// HSV returns hue in [0,1), saturation and value of c.
func (c Color) HSV() (hue, sat, value float32) {
	max := math32.Max(c.R, math32.Max(c.G, c.B))
	min := math32.Min(c.R, math32.Min(c.G, c.B))
	value = max
	delta := max - min
	if max > 0 {
		sat = delta / max
	}
	if delta == 0 {
		return 0, sat, value
	}
	switch max {
	case c.R:
		hue = remEuclid((c.G-c.B)/delta, 6)
	case c.G:
		hue = (c.B-c.R)/delta + 2
	default:
		hue = (c.R-c.G)/delta + 4
	}
	return hue / 6, sat, value
}

func remEuclid(v, m float32) float32 {
	r := math32.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}
