// Package param implements the small expression language used for scalar
// knobs: positions, widths, thresholds, intervals.
//
// A Param is evaluated on demand against a Context and an age. The age is
// whatever clock the owner of the param runs on: global script age for
// node knobs, the pulse's own age for pulse fields.
package param

import (
	"fmt"
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/coreman2200/beacon/internal/waves"
)

// Context is the running state a param is evaluated against.
type Context interface {
	// Age is the accumulated script time in seconds.
	Age() float64
	// TickLen is the length of the frame just started, in seconds.
	TickLen() float32
	// Rand is the shared random stream for the whole graph.
	Rand() *rand.Rand
}

type Kind int

const (
	Constant Kind = iota
	RandFlat
	RandNorm
	Changing
	Wave
	WaveCycle
	Quoted
)

var kindNames = [...]string{"constant", "randflat", "randnorm", "changing", "wave", "wavecycle", "quote"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// normScale rescales a sum of three uniform draws to unit deviation.
const normScale = 0.522

// Param is one node of a parameter expression. Args are positional and
// their meaning depends on Kind:
//
//	RandFlat   min, max
//	RandNorm   mean, stdev
//	Changing   start, velocity
//	Wave       min, max, duration
//	WaveCycle  min, max, period, offset
//	Quoted     inner
type Param struct {
	Kind  Kind
	Value float32
	Shape waves.Shape
	Args  []Param
}

func Const(v float32) Param { return Param{Kind: Constant, Value: v} }

func NewRandFlat(min, max Param) Param {
	return Param{Kind: RandFlat, Args: []Param{min, max}}
}

func NewRandNorm(mean, stdev Param) Param {
	return Param{Kind: RandNorm, Args: []Param{mean, stdev}}
}

func NewChanging(start, velocity Param) Param {
	return Param{Kind: Changing, Args: []Param{start, velocity}}
}

func NewWave(shape waves.Shape, min, max, duration Param) Param {
	return Param{Kind: Wave, Shape: shape, Args: []Param{min, max, duration}}
}

func NewWaveCycle(shape waves.Shape, min, max, period, offset Param) Param {
	return Param{Kind: WaveCycle, Shape: shape, Args: []Param{min, max, period, offset}}
}

// Quote defers evaluation of p through one Resolve.
func Quote(p Param) Param {
	return Param{Kind: Quoted, Args: []Param{p}}
}

// IsConst reports whether p is a plain constant.
func (p Param) IsConst() bool { return p.Kind == Constant }

// Eval computes the live value of p at age.
func (p Param) Eval(ctx Context, age float32) float32 {
	switch p.Kind {
	case Constant:
		return p.Value
	case RandFlat:
		min := p.Args[0].Eval(ctx, age)
		max := p.Args[1].Eval(ctx, age)
		return min + (max-min)*ctx.Rand().Float32()
	case RandNorm:
		mean := p.Args[0].Eval(ctx, age)
		stdev := p.Args[1].Eval(ctx, age)
		rng := ctx.Rand()
		val := rng.Float32() + rng.Float32() + rng.Float32() - 1.5
		return val*stdev/normScale + mean
	case Changing:
		start := p.Args[0].Eval(ctx, age)
		velocity := p.Args[1].Eval(ctx, age)
		return start + age*velocity
	case Wave:
		min := p.Args[0].Eval(ctx, age)
		max := p.Args[1].Eval(ctx, age)
		duration := p.Args[2].Eval(ctx, age)
		phase := float32(1)
		if duration > 0 {
			phase = age / duration
		}
		return min + (max-min)*p.Shape.Sample(phase)
	case WaveCycle:
		min := p.Args[0].Eval(ctx, age)
		max := p.Args[1].Eval(ctx, age)
		period := p.Args[2].Eval(ctx, age)
		offset := p.Args[3].Eval(ctx, age)
		phase := float32(1)
		if period > 0 {
			phase = frac(age/period + offset)
		}
		return min + (max-min)*p.Shape.Sample(phase)
	case Quoted:
		return p.Args[0].Eval(ctx, age)
	}
	panic(fmt.Sprintf("param: eval of unknown kind %v", p.Kind))
}

// Resolve freezes p at age. A quoted param comes back as its inner param,
// unevaluated; a constant comes back as is; anything else collapses to a
// constant holding its current value.
func (p Param) Resolve(ctx Context, age float32) Param {
	switch p.Kind {
	case Quoted:
		return p.Args[0]
	case Constant:
		return p
	}
	return Const(p.Eval(ctx, age))
}

// Min returns a lower bound of p valid from age onward. ok is false when p
// has no lower bound.
func (p Param) Min(ctx Context, age float32) (v float32, ok bool) {
	switch p.Kind {
	case Constant:
		return p.Value, true
	case RandFlat:
		return p.Args[0].Min(ctx, age)
	case RandNorm:
		mean, ok1 := p.Args[0].Min(ctx, age)
		stdev, ok2 := p.Args[1].Max(ctx, age)
		if !ok1 || !ok2 {
			return 0, false
		}
		return -1.5*math32.Abs(stdev)/normScale + mean, true
	case Changing:
		start, ok1 := p.Args[0].Min(ctx, age)
		velocity, ok2 := p.Args[1].Min(ctx, age)
		if !ok1 || !ok2 || velocity < 0 {
			return 0, false
		}
		return start + age*velocity, true
	case Wave, WaveCycle:
		a, ok1 := p.Args[0].Min(ctx, age)
		b, ok2 := p.Args[1].Min(ctx, age)
		if !ok1 || !ok2 {
			return 0, false
		}
		return math32.Min(a, b), true
	case Quoted:
		return p.Args[0].Min(ctx, age)
	}
	return 0, false
}

// Max returns an upper bound of p valid from age onward. ok is false when
// p has no upper bound.
func (p Param) Max(ctx Context, age float32) (v float32, ok bool) {
	switch p.Kind {
	case Constant:
		return p.Value, true
	case RandFlat:
		return p.Args[1].Max(ctx, age)
	case RandNorm:
		mean, ok1 := p.Args[0].Max(ctx, age)
		stdev, ok2 := p.Args[1].Max(ctx, age)
		if !ok1 || !ok2 {
			return 0, false
		}
		return 1.5*math32.Abs(stdev)/normScale + mean, true
	case Changing:
		start, ok1 := p.Args[0].Max(ctx, age)
		velocity, ok2 := p.Args[1].Max(ctx, age)
		if !ok1 || !ok2 || velocity > 0 {
			return 0, false
		}
		return start + age*velocity, true
	case Wave, WaveCycle:
		a, ok1 := p.Args[0].Max(ctx, age)
		b, ok2 := p.Args[1].Max(ctx, age)
		if !ok1 || !ok2 {
			return 0, false
		}
		return math32.Max(a, b), true
	case Quoted:
		return p.Args[0].Max(ctx, age)
	}
	return 0, false
}

func (p Param) String() string {
	switch p.Kind {
	case Constant:
		return fmt.Sprintf("%g", p.Value)
	case Wave, WaveCycle:
		return fmt.Sprintf("%s(%s%v)", p.Kind, p.Shape, p.Args)
	}
	return fmt.Sprintf("%s%v", p.Kind, p.Args)
}

func frac(v float32) float32 {
	return v - math32.Floor(v)
}
