package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/beacon/internal/app"
	"github.com/coreman2200/beacon/internal/config"
	"github.com/coreman2200/beacon/internal/diagnostics"
	"github.com/coreman2200/beacon/internal/driver/imgseq"
	"github.com/coreman2200/beacon/internal/driver/preview"
	"github.com/coreman2200/beacon/internal/driver/sim"
	"github.com/coreman2200/beacon/internal/driver/term"
	"github.com/coreman2200/beacon/internal/driver/window"
	"github.com/coreman2200/beacon/internal/layout"
	"github.com/coreman2200/beacon/internal/led"
	"github.com/coreman2200/beacon/internal/render"
	"github.com/coreman2200/beacon/internal/runner"
)

func main() {
	// ---- Flags (config file overrides most) ----
	var (
		scriptPath = flag.String("script", "", "script file to run")
		pixels     = flag.Int("pixels", 60, "number of LEDs on the strip")
		fps        = flag.Int("fps", 60, "target frames per second")
		driver     = flag.String("driver", "sim", "driver: sim | term | preview | imgseq | window | spi")
		configPath = flag.String("config", "", "path to beacon.yaml or beacon.toml")
		limit      = flag.Float64("limit", 0, "stop after this many seconds (0 = run forever)")
		watch      = flag.Bool("watch", false, "reload the script when it changes")
		cycle      = flag.String("cycle", "", "comma separated scripts to cycle through")
		interval   = flag.Float64("cycle-interval", 30, "seconds per script when cycling")
		fade       = flag.Float64("cycle-fade", 0, "crossfade seconds when cycling")
		seed       = flag.Uint64("seed", 0, "random seed (0 = random)")
		addr       = flag.String("addr", ":8080", "HTTP listen address for the preview driver")
		spiPort    = flag.String("spi", "", "SPI port name, e.g. /dev/spidev0.0 (empty = first)")
		outDir     = flag.String("out", "frames", "output directory for the imgseq driver")
		calib      = flag.String("calib", "", "wiring test instead of a script: index_sweep | rgb_channels | ends")
		logLevel   = flag.String("log-level", "info", "debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// ---- Config (optional) ----
	cfg := &config.Config{}
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		} else {
			cfg = c
		}
	}

	// ---- Effective params (config overrides flags where set) ----
	cfg.Script = firstNonEmpty(cfg.Script, *scriptPath)
	cfg.Driver = firstNonEmpty(cfg.Driver, *driver)
	cfg.Addr = firstNonEmpty(cfg.Addr, *addr)
	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, *logLevel)
	cfg.Calib = firstNonEmpty(cfg.Calib, *calib)
	cfg.SPI.Port = firstNonEmpty(cfg.SPI.Port, *spiPort)
	cfg.ImgSeq.Dir = firstNonEmpty(cfg.ImgSeq.Dir, *outDir)
	cfg.Limit = firstNonZeroFloat(cfg.Limit, *limit)
	cfg.CycleInterval = firstNonZeroFloat(cfg.CycleInterval, *interval)
	cfg.CycleFade = firstNonZeroFloat(cfg.CycleFade, *fade)
	if cfg.Pixels <= 0 {
		cfg.Pixels = *pixels
	}
	if cfg.FPS <= 0 {
		cfg.FPS = *fps
	}
	if cfg.Seed == 0 {
		cfg.Seed = *seed
	}
	cfg.Watch = cfg.Watch || *watch
	if len(cfg.Cycle) == 0 && *cycle != "" {
		cfg.Cycle = strings.Split(*cycle, ",")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level; using info")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("beacon stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Driver ----
	var (
		drv    render.Driver
		srv    *http.Server
		win    *window.Driver
		pv     *preview.Server
		screen = true
	)
	switch cfg.Driver {
	case "sim":
		drv = sim.New(log.Logger, max(1, cfg.FPS))
	case "term":
		drv = term.New(os.Stdout, 0)
	case "preview":
		pv = preview.New(cfg.Pixels, cfg.FPS)
		drv = pv
		srv = &http.Server{
			Addr:         cfg.Addr,
			Handler:      pv.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
	case "imgseq":
		d, err := imgseq.New(imgseq.Options{Dir: cfg.ImgSeq.Dir, Scale: cfg.ImgSeq.Scale, Every: cfg.ImgSeq.Every})
		if err != nil {
			return err
		}
		drv = d
	case "window":
		win = window.New(cfg.Pixels, firstNonEmpty(cfg.Window.Title, "beacon"))
		if cfg.Window.Scale > 0 {
			win.Scale = cfg.Window.Scale
		}
		drv = win
	case "spi":
		s, err := led.Open(cfg.SPI.Port, led.Options{
			Count:      cfg.Pixels,
			Freq:       physic.Frequency(cfg.SPI.FreqKHz) * physic.KiloHertz,
			Brightness: float32(cfg.SPI.Brightness),
			Gamma:      float32(cfg.SPI.Gamma),
			Layout: layout.Strip{
				Width:        cfg.Strip.Width,
				FlipEveryRow: cfg.Strip.FlipEveryRow,
				Reverse:      cfg.Strip.Reverse,
				Offset:       cfg.Strip.Offset,
			},
		})
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("port", cfg.SPI.Port).
				Msg("SPI init failed; falling back to SIM")
			drv = sim.New(log.Logger, max(1, cfg.FPS))
		} else {
			drv = s
			screen = false
		}
	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
		drv = sim.New(log.Logger, max(1, cfg.FPS))
	}
	defer closeDriver(drv)

	// ---- Runner ----
	r, err := app.NewRunner(cfg, func(path string, err error) {
		if pv != nil {
			pv.PushDiag(diagnostics.Reload(path, err))
		}
	})
	if err != nil {
		return err
	}
	rctx, err := r.Build(cfg.Pixels, cfg.FPS)
	if err != nil {
		if pv != nil {
			pv.PushDiag(diagnostics.FromError("SCRIPT.BUILD_FAILED", err))
		}
		return err
	}
	defer runner.Close(rctx)

	eng, err := render.NewEngine(rctx, cfg.Pixels, drv)
	if err != nil {
		return err
	}
	eng.Settings = app.PostSettings(cfg.Post)
	if screen {
		eng.UsePreviewPost()
	}

	// ---- Run loop & server ----
	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancelLoop := context.WithCancel(gctx)
	defer cancelLoop()
	g.Go(func() error {
		defer cancelLoop()
		if win != nil {
			defer win.Close()
		}
		return app.Loop{Eng: eng, FPS: cfg.FPS}.Run(loopCtx)
	})
	if srv != nil {
		g.Go(func() error {
			log.Info().Str("addr", cfg.Addr).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-loopCtx.Done()
			return srv.Close()
		})
	}
	if pv != nil && cfg.Calib != "" {
		pv.PushDiag(diagnostics.Diagnostic{
			Severity: diagnostics.Info, Code: "CALIB.RUNNING", Summary: "Running wiring test",
			Detail: cfg.Calib, Time: time.Now(),
		})
	}
	log.Info().
		Str("driver", cfg.Driver).
		Int("pixels", cfg.Pixels).
		Int("fps", cfg.FPS).
		Msg("beacon running")

	// ebiten insists on the main goroutine
	if win != nil {
		if err := win.Run(); err != nil {
			log.Warn().Err(err).Msg("window closed with error")
		}
		cancelLoop()
	}

	err = g.Wait()
	if ctx.Err() != nil {
		log.Info().Msg("shutting down")
	}
	return err
}

func closeDriver(d render.Driver) {
	if c, ok := d.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("driver close")
		}
	}
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func firstNonZeroFloat(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}
