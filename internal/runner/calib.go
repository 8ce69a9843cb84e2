package runner

import (
	"fmt"

	"github.com/coreman2200/beacon/internal/clock"
	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/pixel"
)

// CalibKind names a wiring test pattern.
type CalibKind string

const (
	// IndexSweep lights one white LED at a time from the first to the
	// last, then finishes.
	IndexSweep CalibKind = "index_sweep"
	// RGBChannels shows all red, all green, all blue, over and over.
	RGBChannels CalibKind = "rgb_channels"
	// Ends lights the first LED red and the last blue.
	Ends CalibKind = "ends"
)

// Calib runs a test pattern for checking strip wiring and colour order.
// Each step lasts Step seconds (default 0.1).
type Calib struct {
	Kind CalibKind
	Step float64
}

func (c Calib) Build(size, fps int) (Context, error) {
	switch c.Kind {
	case IndexSweep, RGBChannels, Ends:
	default:
		return nil, fmt.Errorf("runner: unknown calibration %q", c.Kind)
	}
	if size <= 0 {
		return nil, fmt.Errorf("runner: invalid strip size %d", size)
	}
	step := c.Step
	if step <= 0 {
		step = 0.1
	}
	return &CalibContext{kind: c.Kind, step: step, clock: clock.New(fps), buf: make([]pixel.Color, size)}, nil
}

type CalibContext struct {
	kind  CalibKind
	step  float64
	clock *clock.Clock
	n     int
	buf   []pixel.Color
}

func (c *CalibContext) Tick() {
	c.n = int(c.clock.Tick() / c.step)
	clear(c.buf)

	switch c.kind {
	case IndexSweep:
		if c.n < len(c.buf) {
			c.buf[c.n] = pixel.Grey(1)
		}
	case RGBChannels:
		var col pixel.Color
		switch c.n % 3 {
		case 0:
			col.R = 1
		case 1:
			col.G = 1
		case 2:
			col.B = 1
		}
		for i := range c.buf {
			c.buf[i] = col
		}
	case Ends:
		c.buf[len(c.buf)-1] = pixel.New(0, 0, 1)
		c.buf[0] = pixel.New(1, 0, 0)
	}
}

func (c *CalibContext) Age() float64 { return c.clock.Age() }

func (c *CalibContext) ApplyBuf(fn func(op.Buffer)) {
	fn(op.Buffer{Chan: op.Color, Colors: c.buf})
}

// Done is true once a sweep has passed the last LED.
func (c *CalibContext) Done() bool {
	return c.kind == IndexSweep && c.n >= len(c.buf)
}
