package runner

import (
	"github.com/coreman2200/beacon/internal/clock"
	"github.com/coreman2200/beacon/internal/op"
)

// Limit stops Runner after Limit seconds.
type Limit struct {
	Runner Runner
	Limit  float64
}

func (l Limit) Build(size, fps int) (Context, error) {
	child, err := l.Runner.Build(size, fps)
	if err != nil {
		return nil, err
	}
	return &LimitContext{child: child, limit: l.Limit, clock: clock.New(fps)}, nil
}

// LimitContext keeps its own clock so the limit holds even when the child
// resets its age.
type LimitContext struct {
	child Context
	limit float64
	clock *clock.Clock
}

func (c *LimitContext) Tick() {
	c.clock.Tick()
	c.child.Tick()
}

func (c *LimitContext) Age() float64                { return c.clock.Age() }
func (c *LimitContext) ApplyBuf(fn func(op.Buffer)) { c.child.ApplyBuf(fn) }

func (c *LimitContext) Done() bool {
	return c.clock.Age() > c.limit || c.child.Done()
}

func (c *LimitContext) Close() error { return Close(c.child) }
