package runner

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/pixel"
	"github.com/coreman2200/beacon/internal/pulser"
)

func greyGraph(v float32) *op.Graph {
	g := &op.Graph{}
	g.SetRoot(g.AddColor(op.ColorConstant{Value: pixel.Grey(v)}))
	return g
}

func pulseGraph() *op.Graph {
	g := &op.Graph{}
	p := g.AddScalar(op.Pulser{Def: pulser.NewDef()})
	g.SetRoot(g.AddColor(op.Grey{}, p))
	return g
}

func first(t *testing.T, ctx Context) pixel.Color {
	t.Helper()
	var c pixel.Color
	ctx.ApplyBuf(func(b op.Buffer) {
		out := make([]pixel.Color, b.Len())
		b.CopyColors(out)
		c = out[0]
	})
	return c
}

func TestScriptContext(t *testing.T) {
	ctx, err := Script{Graph: greyGraph(0.5), Seed: 7}.Build(8, 10)
	require.NoError(t, err)
	ctx.Tick()
	assert.Equal(t, 0.0, ctx.Age())
	assert.Equal(t, pixel.Grey(0.5), first(t, ctx))
	ctx.Tick()
	assert.InDelta(t, 0.1, ctx.Age(), 1e-9)
	assert.False(t, ctx.Done())

	sc := ctx.(*ScriptContext)
	assert.Equal(t, uint64(7), sc.Seed())
	assert.Equal(t, 8, sc.Size())
	assert.InDelta(t, 0.1, sc.TickLen(), 1e-6)
}

func TestScriptContextSeedsAreRepeatable(t *testing.T) {
	a, err := NewScriptContext(pulseGraph(), 4, 10, 99)
	require.NoError(t, err)
	b, err := NewScriptContext(pulseGraph(), 4, 10, 99)
	require.NoError(t, err)
	assert.Equal(t, a.Rand().Uint64(), b.Rand().Uint64())

	z, err := NewScriptContext(pulseGraph(), 4, 10, 0)
	require.NoError(t, err)
	assert.NotZero(t, z.Seed())
}

func TestScriptContextRejectsBadGraph(t *testing.T) {
	_, err := Script{Graph: &op.Graph{}, Seed: 1}.Build(8, 10)
	require.Error(t, err)
	var ce *op.CheckError
	assert.True(t, errors.As(err, &ce))

	_, err = Script{Graph: greyGraph(1), Seed: 1}.Build(0, 10)
	assert.ErrorIs(t, err, op.ErrSize)
}

func TestLimitContextIsDone(t *testing.T) {
	ctx, err := Limit{Runner: Script{Graph: greyGraph(1), Seed: 1}, Limit: 1}.Build(4, 10)
	require.NoError(t, err)
	for i := 0; i < 11; i++ {
		ctx.Tick()
	}
	assert.InDelta(t, 1.0, ctx.Age(), 1e-9)
	assert.False(t, ctx.Done())
	ctx.Tick()
	assert.True(t, ctx.Done())
	assert.Equal(t, pixel.Grey(1), first(t, ctx))
}

func TestCycleSwitchesOnInterval(t *testing.T) {
	ctx, err := Cycle{
		Runners:  []Runner{Script{Graph: greyGraph(0), Seed: 1}, Script{Graph: greyGraph(1), Seed: 1}},
		Interval: 1,
	}.Build(4, 10)
	require.NoError(t, err)
	cc := ctx.(*CycleContext)

	for i := 0; i < 10; i++ {
		ctx.Tick()
	}
	assert.Equal(t, 0, cc.Index())
	assert.Equal(t, pixel.Grey(0), first(t, ctx))

	ctx.Tick() // age 1.0
	assert.Equal(t, 1, cc.Index())
	assert.Equal(t, pixel.Grey(1), first(t, ctx))

	for i := 0; i < 10; i++ {
		ctx.Tick()
	}
	assert.Equal(t, 0, cc.Index())
	assert.Equal(t, pixel.Grey(0), first(t, ctx))
}

func TestCycleRestartsChildren(t *testing.T) {
	ctx, err := Cycle{Runners: []Runner{Script{Graph: greyGraph(0), Seed: 1}}, Interval: 0.5}.Build(4, 10)
	require.NoError(t, err)
	cc := ctx.(*CycleContext)
	for i := 0; i < 5; i++ {
		ctx.Tick()
	}
	assert.InDelta(t, 0.4, cc.cur.Age(), 1e-9)
	ctx.Tick()
	assert.Equal(t, 0.0, cc.cur.Age())
}

func TestCycleCrossfades(t *testing.T) {
	ctx, err := Cycle{
		Runners:  []Runner{Script{Graph: greyGraph(0), Seed: 1}, Script{Graph: greyGraph(1), Seed: 1}},
		Interval: 1,
		Fade:     0.5,
	}.Build(4, 10)
	require.NoError(t, err)

	for i := 0; i < 11; i++ {
		ctx.Tick()
	}
	assert.InDelta(t, 0, first(t, ctx).R, 1e-6)
	ctx.Tick()
	ctx.Tick()
	assert.InDelta(t, 0.4, first(t, ctx).R, 1e-3)

	for i := 0; i < 5; i++ {
		ctx.Tick()
	}
	assert.Nil(t, ctx.(*CycleContext).prev)
	assert.Equal(t, pixel.Grey(1), first(t, ctx))
}

type stickyContext struct {
	Context
	closes int
}

func (s *stickyContext) Close() error {
	s.closes++
	return errors.New("sticky")
}

type stickyRunner struct{ built []*stickyContext }

func (r *stickyRunner) Build(size, fps int) (Context, error) {
	ctx, err := Script{Graph: greyGraph(0.25), Seed: 1}.Build(size, fps)
	if err != nil {
		return nil, err
	}
	s := &stickyContext{Context: ctx}
	r.built = append(r.built, s)
	return s, nil
}

func TestCycleLogsChildCloseErrors(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	for _, fade := range []float32{0, 0.2} {
		buf.Reset()
		sr := &stickyRunner{}
		ctx, err := Cycle{Runners: []Runner{sr, Script{Graph: greyGraph(1), Seed: 1}}, Interval: 1, Fade: fade}.Build(4, 10)
		require.NoError(t, err)
		for i := 0; i < 15; i++ {
			ctx.Tick()
		}
		assert.Equal(t, 1, ctx.(*CycleContext).Index(), "fade %v", fade)
		assert.Equal(t, pixel.Grey(1), first(t, ctx), "fade %v", fade)
		require.Len(t, sr.built, 1)
		assert.Equal(t, 1, sr.built[0].closes, "fade %v", fade)
		assert.Contains(t, buf.String(), "cycle: close child", "fade %v", fade)
		assert.Contains(t, buf.String(), "sticky", "fade %v", fade)
	}
}

func TestCycleBuildErrors(t *testing.T) {
	_, err := Cycle{Interval: 1}.Build(4, 10)
	assert.ErrorIs(t, err, ErrNoRunners)
	_, err = Cycle{Runners: []Runner{Script{Graph: greyGraph(0)}}}.Build(4, 10)
	assert.ErrorIs(t, err, ErrInterval)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "show.scr")
	require.NoError(t, os.WriteFile(path, []byte("grey: 0.25\n"), 0o644))

	var reloads []error
	ctx, err := Watch{Path: path, Seed: 3, OnReload: func(err error) { reloads = append(reloads, err) }}.Build(4, 10)
	require.NoError(t, err)
	defer Close(ctx)
	wc := ctx.(*WatchContext)

	ctx.Tick()
	assert.InDelta(t, 0.25, first(t, ctx).R, 1e-6)

	wc.apply(reload{err: errors.New("broken")})
	ctx.Tick()
	assert.InDelta(t, 0.25, first(t, ctx).R, 1e-6)
	require.Len(t, reloads, 1)
	assert.EqualError(t, reloads[0], "broken")

	require.NoError(t, os.WriteFile(path, []byte("grey: 0.75\n"), 0o644))
	require.Eventually(t, func() bool {
		ctx.Tick()
		return first(t, ctx).R > 0.7
	}, 5*time.Second, 10*time.Millisecond)
	assert.NoError(t, reloads[len(reloads)-1])
}

func TestWatchBuildFailsOnBadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.scr")
	require.NoError(t, os.WriteFile(path, []byte("grey: nope\n"), 0o644))
	_, err := Watch{Path: path}.Build(4, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.scr: line 1:")
}
