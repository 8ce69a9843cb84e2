package op

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/coreman2200/beacon/internal/noise"
	"github.com/coreman2200/beacon/internal/param"
	"github.com/coreman2200/beacon/internal/pixel"
	"github.com/coreman2200/beacon/internal/pulser"
)

func (in *Instance) tickScalar(ctx param.Context, ix int) {
	nod := &in.graph.Scalars[ix]
	slot := &in.scalars[ix]
	out := slot.buf
	age := float32(ctx.Age())
	width := float32(len(out))

	switch d := nod.Def.(type) {
	case Constant:
		fill(out, d.Value)

	case ParamNode:
		fill(out, d.P.Eval(ctx, age))

	case Wave:
		min := d.Min.Eval(ctx, age)
		max := d.Max.Eval(ctx, age)
		pos := d.Pos.Eval(ctx, age)
		span := d.Width.Eval(ctx, age)
		if span <= 0 {
			fill(out, min)
			break
		}
		for px := range out {
			x := float32(px) / width
			out[px] = min + (max-min)*d.Shape.Sample((x-pos)/span+0.5)
		}

	case WaveCycle:
		min := d.Min.Eval(ctx, age)
		max := d.Max.Eval(ctx, age)
		pos := d.Pos.Eval(ctx, age)
		period := d.Period.Eval(ctx, age)
		if period <= 0 {
			fill(out, min)
			break
		}
		for px := range out {
			x := float32(px) / width
			phase := (x - pos) / period
			out[px] = min + (max-min)*d.Shape.Sample(phase-math32.Floor(phase))
		}

	case Pulser:
		st := slot.state.(*pulser.State)
		st.Tick(ctx)
		st.Render(ctx, out)

	case Invert:
		src := in.scalarIn(nod.Children[0])
		for px := range out {
			out[px] = 1 - src[px]
		}

	case Brightness:
		src := in.colorIn(nod.Children[0])
		for px := range out {
			out[px] = src[px].Brightness()
		}

	case Channel:
		src := in.colorIn(nod.Children[0])
		for px := range out {
			out[px] = extract(d.Which, src[px])
		}

	case Mul:
		in.foldScalars(out, nod.Children, 1, func(a, b float32) float32 { return a * b })
	case Sum:
		in.foldScalars(out, nod.Children, 0, func(a, b float32) float32 { return a + b })
	case Mean:
		in.foldScalars(out, nod.Children, 0, func(a, b float32) float32 { return a + b })
		if n := len(nod.Children); n > 1 {
			for px := range out {
				out[px] /= float32(n)
			}
		}
	case Min:
		in.foldScalars(out, nod.Children, 0, math32.Min)
	case Max:
		in.foldScalars(out, nod.Children, 0, math32.Max)

	case Clamp:
		src := in.scalarIn(nod.Children[0])
		lo := d.Min.Eval(ctx, age)
		hi := d.Max.Eval(ctx, age)
		for px := range out {
			out[px] = math32.Max(lo, math32.Min(hi, src[px]))
		}

	case Shift:
		src := in.scalarIn(nod.Children[0])
		shiftScalars(out, src, d.Offset.Eval(ctx, age)*width)

	case Decay:
		src := in.scalarIn(nod.Children[0])
		hist := slot.state.(*history)
		mul := decayMul(ctx.TickLen(), d.HalfLife.Eval(ctx, age))
		for px := range out {
			out[px] = math32.Max(src[px], hist.prev[px]*mul)
		}
		copy(hist.prev, out)

	case ShiftDecay:
		// The trail is resampled from the previous output, so a pulse
		// moving with the shift leaves a longer tail on its trailing edge
		// than on its leading edge. Kept as is until the intended
		// behaviour is settled.
		src := in.scalarIn(nod.Children[0])
		hist := slot.state.(*history)
		dt := ctx.TickLen()
		mul := decayMul(dt, d.HalfLife.Eval(ctx, age))
		shift := d.Shift.Eval(ctx, age) * dt * width
		for px := range out {
			held := sampleClamped(hist.prev, float32(px)-shift) * mul
			out[px] = math32.Max(src[px], held)
		}
		copy(hist.prev, out)

	case TimeDelta:
		src := in.scalarIn(nod.Children[0])
		hist := slot.state.(*history)
		for px := range out {
			out[px] = src[px] - hist.prev[px]
		}
		copy(hist.prev, src)

	case Noise:
		nz := slot.state.(*noise.Noise)
		nz.Fill(out, d.Offset.Eval(ctx, age), d.Max.Eval(ctx, age))

	default:
		panic(fmt.Sprintf("op: no scalar kernel for %T", nod.Def))
	}
}

// foldScalars left-folds the children into out. No children leaves the
// identity; one child is copied.
func (in *Instance) foldScalars(out []float32, children []Ref, identity float32, f func(a, b float32) float32) {
	if len(children) == 0 {
		fill(out, identity)
		return
	}
	copy(out, in.scalarIn(children[0]))
	for _, ch := range children[1:] {
		src := in.scalarIn(ch)
		for px := range out {
			out[px] = f(out[px], src[px])
		}
	}
}

func fill(out []float32, v float32) {
	for px := range out {
		out[px] = v
	}
}

// decayMul is the fraction of a held value left after dt seconds.
func decayMul(dt, halflife float32) float32 {
	if halflife <= 0 {
		return 0
	}
	return math32.Pow(2, -dt/halflife)
}

// shiftScalars writes src moved right by by pixels, wrapping around the
// strip and interpolating between neighbours.
func shiftScalars(out, src []float32, by float32) {
	n := len(src)
	for px := range out {
		pos := float32(px) - by
		seg := math32.Floor(pos)
		t := pos - seg
		a := src[wrap(int(seg), n)]
		b := src[wrap(int(seg)+1, n)]
		out[px] = a*(1-t) + b*t
	}
}

// sampleClamped interpolates buf at a fractional index; outside the strip
// reads as zero.
func sampleClamped(buf []float32, pos float32) float32 {
	seg := math32.Floor(pos)
	t := pos - seg
	i := int(seg)
	return at(buf, i)*(1-t) + at(buf, i+1)*t
}

func at(buf []float32, i int) float32 {
	if i < 0 || i >= len(buf) {
		return 0
	}
	return buf[i]
}

func wrap(ix, n int) int {
	ix %= n
	if ix < 0 {
		ix += n
	}
	return ix
}

func extract(which ChannelKind, c pixel.Color) float32 {
	switch which {
	case Red:
		return c.R
	case Green:
		return c.G
	case Blue:
		return c.B
	}
	h, s, v := c.HSV()
	switch which {
	case Hue:
		return h
	case Saturation:
		return s
	}
	return v
}
