// Package render pulls frames out of a running context, post-processes
// them and hands them to an output driver.
package render

import (
	"errors"
	"time"

	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/pixel"
	"github.com/coreman2200/beacon/internal/runner"
)

// Driver abstracts the frame sink (LED strip, preview, files).
type Driver interface {
	Write([]pixel.Color) error
}

// Multi writes every frame to each of its drivers in turn. All drivers
// see the frame even if an earlier one fails.
type Multi []Driver

func (m Multi) Write(buf []pixel.Color) error {
	var errs []error
	for _, d := range m {
		if err := d.Write(buf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Engine renders one frame per RenderOnce: tick the context, copy its
// root buffer out as colours, run post, write to the driver.
type Engine struct {
	Ctx      runner.Context
	Drv      Driver
	Settings Settings

	// Out holds the last frame after post.
	Out []pixel.Color

	Frames uint64

	post PostFunc

	// metrics (last durations in ms)
	Last struct {
		RenderMS float64
		PostMS   float64
		WriteMS  float64
		TotalMS  float64
	}
}

var ErrNoContext = errors.New("render: engine has no context")

// NewEngine allocates the frame buffer and returns an Engine with the LED
// post pipeline wired.
func NewEngine(ctx runner.Context, size int, drv Driver) (*Engine, error) {
	if ctx == nil {
		return nil, ErrNoContext
	}
	if size <= 0 {
		return nil, errors.New("render: invalid strip size")
	}
	return &Engine{
		Ctx:  ctx,
		Drv:  drv,
		Out:  make([]pixel.Color, size),
		post: ApplyLED,
	}, nil
}

// RenderOnce renders and writes a single frame.
func (e *Engine) RenderOnce() error {
	start := time.Now()
	e.Ctx.Tick()
	e.Ctx.ApplyBuf(func(b op.Buffer) { b.CopyColors(e.Out) })
	e.Last.RenderMS = msSince(start)

	postStart := time.Now()
	if e.post != nil {
		e.post(e.Out, e.Settings)
	}
	e.Last.PostMS = msSince(postStart)

	writeStart := time.Now()
	e.Frames++
	if e.Drv != nil {
		if err := e.Drv.Write(e.Out); err != nil {
			return err
		}
	}
	e.Last.WriteMS = msSince(writeStart)
	e.Last.TotalMS = msSince(start)
	return nil
}

// Done reports whether the context has finished.
func (e *Engine) Done() bool { return e.Ctx.Done() }

// Age is the context's age in seconds.
func (e *Engine) Age() float64 { return e.Ctx.Age() }

func (e *Engine) UsePreviewPost() { e.SetPost(ApplyPreview) }
func (e *Engine) UseLEDPost()     { e.SetPost(ApplyLED) }

// SetPost replaces the post pipeline; nil disables it.
func (e *Engine) SetPost(p PostFunc) { e.post = p }

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
