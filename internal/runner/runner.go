// Package runner turns graphs into running contexts and composes them:
// a bare script, a time limit, a rotation through several runners, and a
// script file that reloads itself when edited.
package runner

import (
	"io"
	"math/rand/v2"

	"github.com/coreman2200/beacon/internal/clock"
	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/param"
)

// Context is one running animation. Tick advances it by a frame; ApplyBuf
// hands the current root buffer to fn without copying.
type Context interface {
	Tick()
	Age() float64
	ApplyBuf(fn func(op.Buffer))
	Done() bool
}

// Runner is a recipe for a Context. Building twice gives two independent
// contexts. fps <= 0 selects a wall clock.
type Runner interface {
	Build(size, fps int) (Context, error)
}

// Script runs a single graph. A zero Seed draws one at build time.
type Script struct {
	Graph *op.Graph
	Seed  uint64
}

func (s Script) Build(size, fps int) (Context, error) {
	return NewScriptContext(s.Graph, size, fps, s.Seed)
}

// ScriptContext owns a graph instance, its clock and its random stream.
// It is also the param.Context the instance is evaluated against.
type ScriptContext struct {
	inst  *op.Instance
	clock *clock.Clock
	rng   *rand.Rand
	seed  uint64
}

var _ param.Context = (*ScriptContext)(nil)

func NewScriptContext(g *op.Graph, size, fps int, seed uint64) (*ScriptContext, error) {
	if seed == 0 {
		seed = rand.Uint64()
	}
	c := &ScriptContext{
		clock: clock.New(fps),
		rng:   param.NewRand(seed),
		seed:  seed,
	}
	inst, err := op.NewInstance(g, size, c)
	if err != nil {
		return nil, err
	}
	c.inst = inst
	return c, nil
}

func (c *ScriptContext) Tick() {
	c.clock.Tick()
	c.inst.Tick(c)
}

func (c *ScriptContext) Age() float64     { return c.clock.Age() }
func (c *ScriptContext) TickLen() float32 { return c.clock.TickLen() }
func (c *ScriptContext) Rand() *rand.Rand { return c.rng }
func (c *ScriptContext) Done() bool       { return false }

// Seed is the seed the random stream started from.
func (c *ScriptContext) Seed() uint64 { return c.seed }

func (c *ScriptContext) ApplyBuf(fn func(op.Buffer)) { c.inst.Root(fn) }

// Size is the strip length the context renders.
func (c *ScriptContext) Size() int { return c.inst.Size() }

// Close releases ctx if it holds resources, such as a file watcher.
func Close(ctx Context) error {
	if c, ok := ctx.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
