// Package clock measures script age for a running context.
package clock

import "time"

// Clock advances once per frame. With a fixed rate the age of frame n is
// n/fps regardless of wall time, which makes offline renders repeatable.
// Without one it follows the wall clock from construction.
type Clock struct {
	fps     int
	now     func() time.Time
	birth   time.Time
	count   int
	age     float64
	tickLen float32
}

// New returns a fixed-rate clock when fps > 0 and a wall clock otherwise.
func New(fps int) *Clock {
	return newWithNow(fps, time.Now)
}

func newWithNow(fps int, now func() time.Time) *Clock {
	return &Clock{fps: fps, now: now, birth: now()}
}

// Tick starts a new frame and returns its age. The first frame is at 0.
func (c *Clock) Tick() float64 {
	var age float64
	if c.fps > 0 {
		age = float64(c.count) / float64(c.fps)
	} else {
		age = c.now().Sub(c.birth).Seconds()
	}
	c.tickLen = float32(age - c.age)
	c.age = age
	c.count++
	return age
}

func (c *Clock) Age() float64 { return c.age }

// TickLen is the time between the last two ticks.
func (c *Clock) TickLen() float32 { return c.tickLen }

// Fixed reports whether the clock runs at a fixed rate.
func (c *Clock) Fixed() bool { return c.fps > 0 }

// Frames is the number of ticks so far.
func (c *Clock) Frames() int { return c.count }
