// Package app wires config into runners and drives the render loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/beacon/internal/config"
	"github.com/coreman2200/beacon/internal/render"
	"github.com/coreman2200/beacon/internal/runner"
	"github.com/coreman2200/beacon/internal/script"
)

var ErrNoScript = errors.New("app: no script or cycle configured")

// NewRunner picks the runner described by cfg: a calibration pattern when
// cfg.Calib is set, a cycle when cfg.Cycle is set, otherwise the single
// script (watched when cfg.Watch). Any of them is wrapped in a limit when
// cfg.Limit > 0. onReload is passed to watched scripts.
func NewRunner(cfg *config.Config, onReload func(path string, err error)) (runner.Runner, error) {
	var r runner.Runner
	switch {
	case cfg.Calib != "":
		r = runner.Calib{Kind: runner.CalibKind(cfg.Calib)}
	case len(cfg.Cycle) > 0:
		children := make([]runner.Runner, 0, len(cfg.Cycle))
		for _, p := range cfg.Cycle {
			child, err := scriptRunner(p, cfg, onReload)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		interval := cfg.CycleInterval
		if interval <= 0 {
			interval = 30
		}
		r = runner.Cycle{Runners: children, Interval: interval, Fade: float32(cfg.CycleFade)}
	case cfg.Script != "":
		child, err := scriptRunner(cfg.Script, cfg, onReload)
		if err != nil {
			return nil, err
		}
		r = child
	default:
		return nil, ErrNoScript
	}
	if cfg.Limit > 0 {
		r = runner.Limit{Runner: r, Limit: cfg.Limit}
	}
	return r, nil
}

func scriptRunner(path string, cfg *config.Config, onReload func(string, error)) (runner.Runner, error) {
	if cfg.Watch {
		w := runner.Watch{Path: path, Seed: cfg.Seed}
		if onReload != nil {
			w.OnReload = func(err error) { onReload(path, err) }
		}
		return w, nil
	}
	g, err := script.Load(path)
	if err != nil {
		return nil, err
	}
	return runner.Script{Graph: g, Seed: cfg.Seed}, nil
}

// PostSettings converts the config post block.
func PostSettings(p config.Post) render.Settings {
	return render.Settings{
		ExposureEV:  float32(p.ExposureEV),
		OutputGamma: float32(p.OutputGamma),
		WhiteCap:    float32(p.WhiteCap),
		LEDChanMA:   float32(p.LEDChanMA),
		BudgetMA:    float32(p.BudgetMA),
		LimiterKnee: float32(p.LimiterKnee),
	}
}

// Loop renders Eng at FPS until ctx is cancelled or the context is done.
type Loop struct {
	Eng *render.Engine
	FPS int
}

func (l Loop) Run(ctx context.Context) error {
	if l.Eng == nil {
		return fmt.Errorf("app: loop has no engine")
	}
	fps := l.FPS
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := l.Eng.RenderOnce(); err != nil {
			// log once per run of failures
			if !failing {
				log.Warn().Err(err).Uint64("frame", l.Eng.Frames).Msg("driver write failed")
			}
			failing = true
		} else if failing {
			log.Info().Uint64("frame", l.Eng.Frames).Msg("driver recovered")
			failing = false
		}
		if l.Eng.Done() {
			log.Info().Float64("age", l.Eng.Age()).Uint64("frames", l.Eng.Frames).Msg("show finished")
			return nil
		}
	}
}
