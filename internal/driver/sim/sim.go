// Package sim is a headless driver that logs a compact summary of frames.
package sim

import (
	"github.com/rs/zerolog"

	"github.com/coreman2200/beacon/internal/pixel"
)

// Driver logs the first pixel and the average colour every Every frames.
type Driver struct {
	Log   zerolog.Logger
	Every int
	Count int
}

func New(log zerolog.Logger, every int) *Driver {
	if every <= 0 {
		every = 1
	}
	return &Driver{Log: log, Every: every}
}

func (d *Driver) Write(buf []pixel.Color) error {
	d.Count++
	if d.Every > 1 && d.Count%d.Every != 0 {
		return nil
	}
	avg := Average(buf)
	var first pixel.Color
	if len(buf) > 0 {
		first = buf[0]
	}
	d.Log.Info().
		Int("frame", d.Count).
		Str("avg", avg.Hex()).
		Str("first", first.Hex()).
		Float32("brightness", avg.Brightness()).
		Msg("frame")
	return nil
}

// Average is the mean colour of buf; black when empty.
func Average(buf []pixel.Color) pixel.Color {
	var sum pixel.Color
	for _, c := range buf {
		sum = sum.Add(c)
	}
	if len(buf) == 0 {
		return sum
	}
	return sum.Scale(1 / float32(len(buf)))
}
