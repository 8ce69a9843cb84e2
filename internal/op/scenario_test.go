package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beacon/internal/param"
	"github.com/coreman2200/beacon/internal/pixel"
	"github.com/coreman2200/beacon/internal/pulser"
	"github.com/coreman2200/beacon/internal/waves"
)

// pulseOverGreen is sum(muls(#b333e6, pulser), #006600): a purple pulse
// on a green floor.
func pulseOverGreen(def pulser.Def) (*Graph, Ref) {
	g := &Graph{}
	purple := g.AddColor(ColorConstant{Value: pixel.Color{R: 0.7, G: 0.2, B: 0.9}})
	p := g.AddScalar(Pulser{Def: def})
	lit := g.AddColor(MulS{}, purple, p)
	green := g.AddColor(ColorConstant{Value: pixel.Color{G: 0.4}})
	return g, g.AddColor(ColorSum{}, lit, green)
}

func TestPulseOverGreen(t *testing.T) {
	const (
		pixels = 60
		frames = 180
		dt     = float32(1.0 / 60)
	)
	g, root := pulseOverGreen(pulser.NewDef())
	ctx := param.NewStatic(7)
	ctx.Dt = dt
	in := build(t, g, root, pixels, ctx)

	base := pixel.Color{G: 0.4}
	frame := make([]pixel.Color, pixels)
	for f := 0; f < frames; f++ {
		in.Tick(ctx)
		in.Root(func(b Buffer) {
			require.Equal(t, Color, b.Chan)
			b.CopyColors(frame)
		})
		require.Equal(t, base, frame[0], "frame %d", f)
		require.Equal(t, base, frame[pixels-1], "frame %d", f)

		// Pixel 30 sits on the pulse centre, where the triangle peaks.
		peak := frame[30]
		require.InDelta(t, 0.7, peak.R, 1e-5, "frame %d", f)
		require.InDelta(t, 0.6, peak.G, 1e-5, "frame %d", f)
		require.InDelta(t, 0.9, peak.B, 1e-5, "frame %d", f)
		ctx.Advance(dt)
	}
}

func TestPulseOverGreenBaselineBeforeFirstPulse(t *testing.T) {
	def := pulser.NewDef()
	def.TimeShape = waves.Triangle
	g, root := pulseOverGreen(def)
	ctx := param.NewStatic(7)
	ctx.Dt = 1.0 / 60
	in := build(t, g, root, 60, ctx)

	in.Tick(ctx)
	frame := colors(in, root)
	for ix, c := range frame {
		assert.Equal(t, pixel.Color{G: 0.4}, c, "pixel %d", ix)
	}

	// Halfway through its life the triangle envelope is at its peak.
	for i := 0; i < 30; i++ {
		ctx.Advance(1.0 / 60)
		in.Tick(ctx)
	}
	peak := colors(in, root)[30]
	assert.InDelta(t, 0.7, peak.R, 1e-3)
	assert.InDelta(t, 0.6, peak.G, 1e-3)
}

func TestSeededGraphsRepeat(t *testing.T) {
	run := func() []pixel.Color {
		def := pulser.NewDef()
		def.Interval = param.NewRandFlat(param.Const(0.1), param.Const(0.4))
		def.Pos = param.NewRandNorm(param.Const(0.5), param.Const(0.2))
		g, root := pulseOverGreen(def)
		nz := g.AddScalar(Noise{Grain: 8, Octaves: 2, Offset: param.NewChanging(param.Const(0), param.Const(0.1)), Max: param.Const(1)})
		dec := g.AddScalar(Decay{HalfLife: param.Const(0.3)}, nz)
		top := g.AddColor(ColorSum{}, root, g.AddColor(Grey{}, dec))

		ctx := param.NewStatic(99)
		ctx.Dt = 1.0 / 30
		in := build(t, g, top, 24, ctx)
		for i := 0; i < 90; i++ {
			in.Tick(ctx)
			ctx.Advance(1.0 / 30)
		}
		return colors(in, top)
	}
	assert.Equal(t, run(), run())
}
