package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedRate(t *testing.T) {
	c := New(4)
	assert.True(t, c.Fixed())
	assert.Equal(t, 0.0, c.Tick())
	assert.Equal(t, float32(0), c.TickLen())
	assert.Equal(t, 0.25, c.Tick())
	assert.Equal(t, float32(0.25), c.TickLen())
	c.Tick()
	assert.Equal(t, 0.5, c.Age())
	assert.Equal(t, 3, c.Frames())
}

func TestWallClock(t *testing.T) {
	start := time.Unix(100, 0)
	now := start
	c := newWithNow(0, func() time.Time { return now })
	assert.False(t, c.Fixed())

	now = start.Add(100 * time.Millisecond)
	assert.InDelta(t, 0.1, c.Tick(), 1e-9)
	now = start.Add(350 * time.Millisecond)
	c.Tick()
	assert.InDelta(t, 0.35, c.Age(), 1e-9)
	assert.InDelta(t, 0.25, c.TickLen(), 1e-6)
}
