package op

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"

	"github.com/coreman2200/beacon/internal/param"
	"github.com/coreman2200/beacon/internal/pixel"
)

func (in *Instance) tickColor(ctx param.Context, ix int) {
	nod := &in.graph.Colors[ix]
	slot := &in.colors[ix]
	out := slot.buf
	age := float32(ctx.Age())

	switch d := nod.Def.(type) {
	case ColorConstant:
		for px := range out {
			out[px] = d.Value
		}

	case ColorInvert:
		src := in.colorIn(nod.Children[0])
		for px := range out {
			out[px] = src[px].Invert()
		}

	case Grey:
		pixel.FromScalars(out, in.scalarIn(nod.Children[0]))

	case RGB:
		r := in.scalarIn(nod.Children[0])
		g := in.scalarIn(nod.Children[1])
		b := in.scalarIn(nod.Children[2])
		for px := range out {
			out[px] = pixel.Color{R: r[px], G: g[px], B: b[px]}
		}

	case HSV:
		h := in.scalarIn(nod.Children[0])
		s := in.scalarIn(nod.Children[1])
		v := in.scalarIn(nod.Children[2])
		for px := range out {
			out[px] = pixel.FromHSV(h[px], s[px], v[px])
		}

	case Gradient:
		src := in.scalarIn(nod.Children[0])
		for px := range out {
			out[px] = gradient(d.Stops, src[px])
		}

	case PGradient:
		stops := slot.state.([]Stop)
		src := in.scalarIn(nod.Children[0])
		for px := range out {
			out[px] = pgradient(stops, src[px])
		}

	case MulS:
		src := in.colorIn(nod.Children[0])
		scale := in.scalarIn(nod.Children[1])
		for px := range out {
			out[px] = src[px].Scale(scale[px])
		}

	case ColorMul:
		in.foldColors(out, nod.Children, pixel.Grey(1), pixel.Color.Mul)
	case ColorSum:
		in.foldColors(out, nod.Children, pixel.Color{}, pixel.Color.Add)
	case ColorMean:
		in.foldColors(out, nod.Children, pixel.Color{}, pixel.Color.Add)
		if n := len(nod.Children); n > 1 {
			for px := range out {
				out[px] = out[px].Scale(1 / float32(n))
			}
		}
	case ColorMin:
		in.foldColors(out, nod.Children, pixel.Color{}, pixel.Color.Min)
	case ColorMax:
		in.foldColors(out, nod.Children, pixel.Color{}, pixel.Color.Max)

	case Lerp:
		a := in.colorIn(nod.Children[0])
		b := in.colorIn(nod.Children[1])
		mask := in.scalarIn(nod.Children[2])
		for px := range out {
			out[px] = a[px].Lerp(b[px], mask[px])
		}

	case Mask:
		a := in.colorIn(nod.Children[0])
		b := in.colorIn(nod.Children[1])
		mask := in.scalarIn(nod.Children[2])
		threshold := d.Threshold.Eval(ctx, age)
		for px := range out {
			if mask[px] < threshold {
				out[px] = a[px]
			} else {
				out[px] = b[px]
			}
		}

	case ColorShift:
		src := in.colorIn(nod.Children[0])
		n := len(src)
		by := d.Offset.Eval(ctx, age) * float32(n)
		for px := range out {
			pos := float32(px) - by
			seg := math32.Floor(pos)
			out[px] = src[wrap(int(seg), n)].Lerp(src[wrap(int(seg)+1, n)], pos-seg)
		}

	default:
		panic(fmt.Sprintf("op: no color kernel for %T", nod.Def))
	}
}

func (in *Instance) foldColors(out []pixel.Color, children []Ref, identity pixel.Color, f func(a, b pixel.Color) pixel.Color) {
	if len(children) == 0 {
		for px := range out {
			out[px] = identity
		}
		return
	}
	copy(out, in.colorIn(children[0]))
	for _, ch := range children[1:] {
		src := in.colorIn(ch)
		for px := range out {
			out[px] = f(out[px], src[px])
		}
	}
}

// gradient spreads stops evenly over [0,1]. Inputs outside the range
// clamp to the end stops; NaN reads as the first stop.
func gradient(stops []pixel.Color, v float32) pixel.Color {
	n := len(stops)
	switch {
	case n == 0:
		return pixel.Color{}
	case n == 1 || v <= 0 || math32.IsNaN(v):
		return stops[0]
	case v >= 1:
		return stops[n-1]
	}
	pos := v * float32(n-1)
	seg := math32.Floor(pos)
	i := int(seg)
	if i >= n-1 {
		return stops[n-1]
	}
	return stops[i].Lerp(stops[i+1], pos-seg)
}

// pgradient looks v up among stops sorted by position. NaN reads as the
// first stop.
func pgradient(stops []Stop, v float32) pixel.Color {
	n := len(stops)
	switch {
	case n == 0:
		return pixel.Color{}
	case v <= stops[0].Pos || math32.IsNaN(v):
		return stops[0].Color
	case v >= stops[n-1].Pos:
		return stops[n-1].Color
	}
	i := sort.Search(n, func(i int) bool { return stops[i].Pos > v })
	lo, hi := stops[i-1], stops[i]
	span := hi.Pos - lo.Pos
	if span <= 0 {
		return hi.Color
	}
	return lo.Color.Lerp(hi.Color, (v-lo.Pos)/span)
}
