package op

import (
	"errors"
	"fmt"
	"slices"

	"github.com/coreman2200/beacon/internal/noise"
	"github.com/coreman2200/beacon/internal/param"
	"github.com/coreman2200/beacon/internal/pixel"
	"github.com/coreman2200/beacon/internal/pulser"
)

// Buffer is a read-only view of one node's output for the current frame.
// Exactly one of Scalars and Colors is set, according to Chan.
type Buffer struct {
	Chan    Chan
	Scalars []float32
	Colors  []pixel.Color
}

func (b Buffer) Len() int {
	if b.Chan == Scalar {
		return len(b.Scalars)
	}
	return len(b.Colors)
}

// CopyColors writes the buffer into dst as colours; scalars become grey.
func (b Buffer) CopyColors(dst []pixel.Color) {
	if b.Chan == Scalar {
		pixel.FromScalars(dst, b.Scalars)
		return
	}
	copy(dst, b.Colors)
}

type scalarSlot struct {
	buf   []float32
	state any
}

type colorSlot struct {
	buf   []pixel.Color
	state any
}

// history is the per-node memory of Decay, ShiftDecay and TimeDelta.
type history struct {
	prev []float32
}

// Instance is a graph bound to a strip length, with one output buffer
// and one state slot per node. Buffers are reused every frame.
type Instance struct {
	graph   *Graph
	size    int
	scalars []scalarSlot
	colors  []colorSlot
}

var ErrSize = errors.New("op: strip size must be positive")

// NewInstance checks g and allocates everything a frame needs. Stateful
// nodes draw their initial state (noise tables, pulse clocks) from ctx.
func NewInstance(g *Graph, size int, ctx param.Context) (*Instance, error) {
	if size <= 0 {
		return nil, ErrSize
	}
	if err := ConsistencyCheck(g); err != nil {
		return nil, err
	}
	in := &Instance{
		graph:   g,
		size:    size,
		scalars: make([]scalarSlot, len(g.Scalars)),
		colors:  make([]colorSlot, len(g.Colors)),
	}
	for ix, nod := range g.Scalars {
		in.scalars[ix] = scalarSlot{
			buf:   make([]float32, size),
			state: newScalarState(nod.Def, size, ctx),
		}
	}
	for ix, nod := range g.Colors {
		in.colors[ix] = colorSlot{
			buf:   make([]pixel.Color, size),
			state: newColorState(nod.Def),
		}
	}
	return in, nil
}

func newScalarState(def ScalarDef, size int, ctx param.Context) any {
	switch d := def.(type) {
	case Pulser:
		return pulser.NewState(d.Def, ctx)
	case Noise:
		return noise.New(d.Grain, d.Octaves, ctx.Rand())
	case Decay, ShiftDecay, TimeDelta:
		return &history{prev: make([]float32, size)}
	}
	return nil
}

func newColorState(def ColorDef) any {
	if d, ok := def.(PGradient); ok {
		stops := slices.Clone(d.Stops)
		slices.SortStableFunc(stops, func(a, b Stop) int {
			switch {
			case a.Pos < b.Pos:
				return -1
			case a.Pos > b.Pos:
				return 1
			}
			return 0
		})
		return stops
	}
	return nil
}

// Size is the strip length the instance was built for.
func (in *Instance) Size() int { return in.size }

// Graph returns the graph the instance evaluates.
func (in *Instance) Graph() *Graph { return in.graph }

// Tick evaluates one frame: every node in reverse order, so children are
// fresh when their parents read them. A child of the wrong channel panics.
func (in *Instance) Tick(ctx param.Context) {
	order := in.graph.Order
	for i := len(order) - 1; i >= 0; i-- {
		r := order[i]
		if r.Chan == Scalar {
			in.tickScalar(ctx, r.Index)
		} else {
			in.tickColor(ctx, r.Index)
		}
	}
}

// Root calls fn with the root node's buffer.
func (in *Instance) Root(fn func(Buffer)) {
	in.Buffer(in.graph.Order[0], fn)
}

// Buffer calls fn with the buffer of r. fn must not keep or modify it.
func (in *Instance) Buffer(r Ref, fn func(Buffer)) {
	if r.Chan == Scalar {
		fn(Buffer{Chan: Scalar, Scalars: in.scalars[r.Index].buf})
		return
	}
	fn(Buffer{Chan: Color, Colors: in.colors[r.Index].buf})
}

func (in *Instance) scalarIn(r Ref) []float32 {
	if r.Chan != Scalar {
		panic(fmt.Sprintf("op: child %v read as scalar", r))
	}
	return in.scalars[r.Index].buf
}

func (in *Instance) colorIn(r Ref) []pixel.Color {
	if r.Chan != Color {
		panic(fmt.Sprintf("op: child %v read as color", r))
	}
	return in.colors[r.Index].buf
}
