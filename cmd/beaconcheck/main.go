// Command beaconcheck parses, builds and checks scripts without running a
// show. It exits non-zero if any script fails.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/beacon/internal/driver/term"
	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/render"
	"github.com/coreman2200/beacon/internal/runner"
	"github.com/coreman2200/beacon/internal/script"
)

func main() {
	var (
		tree   = flag.Bool("tree", false, "print the parsed script tree")
		graph  = flag.Bool("graph", false, "print the built op graph")
		order  = flag.Bool("order", false, "print the evaluation order")
		frames = flag.Int("frames", 0, "render this many frames to the terminal")
		pixels = flag.Int("pixels", 60, "strip size for -frames")
		fps    = flag.Int("fps", 30, "frame rate for -frames")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: beaconcheck [flags] script...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	failed := false
	for _, path := range flag.Args() {
		if err := check(path, *tree, *graph, *order, *frames, *pixels, *fps); err != nil {
			log.Error().Err(err).Str("path", path).Msg("check failed")
			failed = true
			continue
		}
		log.Info().Str("path", path).Msg("ok")
	}
	if failed {
		os.Exit(1)
	}
}

func check(path string, tree, graph, order bool, frames, pixels, fps int) error {
	items, err := script.ParseFile(path)
	if err != nil {
		return err
	}
	if tree {
		fmt.Printf("# %s tree\n", path)
		if err := script.Dump(os.Stdout, items); err != nil {
			return err
		}
	}
	g, err := script.Build(items)
	if err != nil {
		return err
	}
	if graph {
		fmt.Printf("# %s graph\n", path)
		if err := op.Dump(os.Stdout, g); err != nil {
			return err
		}
	}
	if order {
		fmt.Printf("# %s order\n", path)
		if err := op.DumpOrder(os.Stdout, g); err != nil {
			return err
		}
	}
	if frames <= 0 {
		return nil
	}

	ctx, err := runner.Script{Graph: g}.Build(pixels, fps)
	if err != nil {
		return err
	}
	drv := term.New(os.Stdout, 0)
	eng, err := render.NewEngine(ctx, pixels, drv)
	if err != nil {
		return err
	}
	eng.UsePreviewPost()
	tick := time.NewTicker(time.Second / time.Duration(max(1, fps)))
	defer tick.Stop()
	for i := 0; i < frames; i++ {
		if err := eng.RenderOnce(); err != nil {
			return err
		}
		<-tick.C
	}
	return drv.Close()
}
