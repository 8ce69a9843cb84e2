package runner

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/coreman2200/beacon/internal/clock"
	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/pixel"
)

var (
	ErrNoRunners = errors.New("runner: cycle needs at least one runner")
	ErrInterval  = errors.New("runner: cycle interval must be positive")
)

// Cycle plays Runners in turn, Interval seconds each, starting over after
// the last. With Fade > 0 each change crossfades over Fade seconds.
type Cycle struct {
	Runners  []Runner
	Interval float64
	Fade     float32
}

func (c Cycle) Build(size, fps int) (Context, error) {
	if len(c.Runners) == 0 {
		return nil, ErrNoRunners
	}
	if c.Interval <= 0 {
		return nil, ErrInterval
	}
	child, err := c.Runners[0].Build(size, fps)
	if err != nil {
		return nil, err
	}
	return &CycleContext{
		runners:    c.Runners,
		interval:   c.Interval,
		fade:       c.Fade,
		size:       size,
		fps:        fps,
		clock:      clock.New(fps),
		cur:        child,
		nextChange: c.Interval,
		from:       make([]pixel.Color, size),
		to:         make([]pixel.Color, size),
		mixed:      make([]pixel.Color, size),
	}, nil
}

// CycleContext builds each child when its turn comes, so every child
// starts from age zero.
type CycleContext struct {
	runners  []Runner
	interval float64
	fade     float32
	size     int
	fps      int
	clock    *clock.Clock

	index      int
	cur        Context
	nextChange float64

	// outgoing child while a crossfade runs
	prev  Context
	fader *gween.Tween
	alpha float32

	from, to, mixed []pixel.Color
}

func (c *CycleContext) Tick() {
	age := c.clock.Tick()
	if c.fader != nil {
		alpha, finished := c.fader.Update(c.clock.TickLen())
		c.alpha = alpha
		if finished {
			c.dropPrev()
		}
	}
	if age >= c.nextChange {
		for age >= c.nextChange {
			c.nextChange += c.interval
		}
		c.advance()
	}
	if c.prev != nil {
		c.prev.Tick()
	}
	c.cur.Tick()
}

func (c *CycleContext) advance() {
	next := (c.index + 1) % len(c.runners)
	child, err := c.runners[next].Build(c.size, c.fps)
	if err != nil {
		log.Warn().Err(err).Int("index", next).Msg("cycle: next runner failed to build; keeping current")
		return
	}
	c.index = next
	c.dropPrev()
	if c.fade > 0 {
		c.prev = c.cur
		c.fader = gween.New(0, 1, c.fade, ease.Linear)
		c.alpha = 0
	} else {
		closeChild(c.cur)
	}
	c.cur = child
	log.Debug().Int("index", next).Float64("age", c.clock.Age()).Msg("cycle: switched")
}

func (c *CycleContext) dropPrev() {
	if c.prev != nil {
		closeChild(c.prev)
	}
	c.prev = nil
	c.fader = nil
}

func closeChild(ctx Context) {
	if err := Close(ctx); err != nil {
		log.Warn().Err(err).Msg("cycle: close child")
	}
}

func (c *CycleContext) Age() float64 { return c.clock.Age() }
func (c *CycleContext) Done() bool   { return c.cur.Done() }

// Index is the position of the current child in the runner list.
func (c *CycleContext) Index() int { return c.index }

// ApplyBuf hands out the current child's buffer, or during a crossfade a
// colour mix of the outgoing and incoming children.
func (c *CycleContext) ApplyBuf(fn func(op.Buffer)) {
	if c.prev == nil {
		c.cur.ApplyBuf(fn)
		return
	}
	c.prev.ApplyBuf(func(b op.Buffer) { b.CopyColors(c.from) })
	c.cur.ApplyBuf(func(b op.Buffer) { b.CopyColors(c.to) })
	pixel.Mix(c.mixed, c.from, c.to, c.alpha)
	fn(op.Buffer{Chan: op.Color, Colors: c.mixed})
}

func (c *CycleContext) Close() error {
	c.dropPrev()
	return Close(c.cur)
}
