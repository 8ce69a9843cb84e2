// Package pulser emits transient pulses along the strip.
//
// A generator spawns a pulse every Interval seconds. Each pulse freezes
// its position, width and duration at birth (quoted params stay live) and
// ages on its own clock until its time envelope runs out.
package pulser

import (
	"fmt"
	"math"

	"github.com/coreman2200/beacon/internal/param"
	"github.com/coreman2200/beacon/internal/waves"
)

// Def configures a generator.
type Def struct {
	Interval param.Param
	Duration param.Param
	Pos      param.Param
	Width    param.Param
	// CountLimit caps the total number of spawned pulses. Zero means
	// unlimited.
	CountLimit int
	SpaceShape waves.Shape
	TimeShape  waves.Shape
}

// NewDef returns a Def with the default knobs: one centred triangle pulse
// a second, each lasting a second.
func NewDef() Def {
	return Def{
		Interval:   param.Const(1),
		Duration:   param.Const(1),
		Pos:        param.Const(0.5),
		Width:      param.Const(0.25),
		SpaceShape: waves.Triangle,
		TimeShape:  waves.Flat,
	}
}

func (d Def) String() string {
	limit := "none"
	if d.CountLimit > 0 {
		limit = fmt.Sprint(d.CountLimit)
	}
	return fmt.Sprintf("pulser(interval=%s duration=%s pos=%s width=%s countlimit=%s space=%s time=%s)",
		d.Interval, d.Duration, d.Pos, d.Width, limit, d.SpaceShape, d.TimeShape)
}

// Pulse is one live event. Its params are evaluated against the pulse's
// own age.
type Pulse struct {
	Birth      float64
	Pos        param.Param
	Width      param.Param
	Duration   param.Param
	SpaceShape waves.Shape
	TimeShape  waves.Shape
	Dead       bool
}

// Age returns how long the pulse has been alive at the context's time.
func (p *Pulse) Age(ctx param.Context) float32 {
	return float32(ctx.Age() - p.Birth)
}

// State is the mutable side of a generator node.
type State struct {
	Def       Def
	Birth     float64
	NextStart float64
	Total     int
	Pulses    []Pulse
}

// NewState starts a generator at the context's current age. The first
// pulse is due immediately.
func NewState(def Def, ctx param.Context) *State {
	return &State{Def: def, Birth: ctx.Age()}
}

// Tick prunes dead pulses and spawns a new one when due.
func (s *State) Tick(ctx param.Context) {
	live := s.Pulses[:0]
	for _, p := range s.Pulses {
		if !p.Dead {
			live = append(live, p)
		}
	}
	clear(s.Pulses[len(live):])
	s.Pulses = live

	age := ctx.Age() - s.Birth
	if age < s.NextStart {
		return
	}
	s.Pulses = append(s.Pulses, Pulse{
		Birth:      ctx.Age(),
		Pos:        s.Def.Pos.Resolve(ctx, 0),
		Width:      s.Def.Width.Resolve(ctx, 0),
		Duration:   s.Def.Duration.Resolve(ctx, 0),
		SpaceShape: s.Def.SpaceShape,
		TimeShape:  s.Def.TimeShape,
	})
	s.Total++
	s.NextStart = age + float64(s.Def.Interval.Eval(ctx, float32(age)))
	if s.Def.CountLimit > 0 && s.Total >= s.Def.CountLimit {
		s.NextStart = math.Inf(1)
	}
}

// Render zeroes buf and accumulates every live pulse into it. Pulses
// found to be finished are marked dead and pruned on the next Tick.
func (s *State) Render(ctx param.Context, buf []float32) {
	clear(buf)
	width := float32(len(buf))
	for i := range s.Pulses {
		p := &s.Pulses[i]
		if p.Dead {
			continue
		}
		page := p.Age(ctx)
		duration := p.Duration.Eval(ctx, page)
		if duration <= 0 {
			p.Dead = true
			continue
		}
		// life is [0,1): at t == 1 the next pulse of an equal interval
		// takes over
		t := page / duration
		if t >= 1 {
			p.Dead = true
			continue
		}
		timeEnv := float32(1)
		if p.TimeShape != waves.Flat {
			timeEnv = p.TimeShape.Sample(t)
		}
		if p.exited(ctx, page) {
			p.Dead = true
			continue
		}

		if p.SpaceShape == waves.Flat {
			for ix := range buf {
				buf[ix] += timeEnv
			}
			continue
		}
		pw := p.Width.Eval(ctx, page)
		if pw <= 0 {
			continue
		}
		start := p.Pos.Eval(ctx, page) - pw/2
		for ix := range buf {
			x := float32(ix) / width
			buf[ix] += p.SpaceShape.Sample((x-start)/pw) * timeEnv
		}
	}
}

// exited reports whether the static bounds of position and width place
// the pulse entirely outside [0,1] from now on.
func (p *Pulse) exited(ctx param.Context, page float32) bool {
	if p.SpaceShape == waves.Flat {
		return false
	}
	wmax, ok := p.Width.Max(ctx, page)
	if !ok {
		return false
	}
	if pmin, ok := p.Pos.Min(ctx, page); ok && pmin-wmax/2 >= 1 {
		return true
	}
	if pmax, ok := p.Pos.Max(ctx, page); ok && pmax+wmax/2 <= 0 {
		return true
	}
	return false
}
