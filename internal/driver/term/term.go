// Package term draws the strip as a row of coloured cells in a terminal.
package term

import (
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/coreman2200/beacon/internal/pixel"
)

// Driver redraws one line per frame. With Width > 0 the strip is averaged
// down to at most Width cells.
type Driver struct {
	out   *termenv.Output
	Width int
	cells []pixel.Color
	line  strings.Builder
}

func New(w io.Writer, width int, opts ...termenv.OutputOption) *Driver {
	return &Driver{out: termenv.NewOutput(w, opts...), Width: width}
}

func (d *Driver) Write(buf []pixel.Color) error {
	cells := d.downsample(buf)
	d.line.Reset()
	d.line.WriteByte('\r')
	for _, c := range cells {
		bg := d.out.Color("#" + c.Hex()[1:])
		d.line.WriteString(d.out.String(" ").Background(bg).String())
	}
	_, err := io.WriteString(d.out, d.line.String())
	return err
}

func (d *Driver) downsample(buf []pixel.Color) []pixel.Color {
	if d.Width <= 0 || len(buf) <= d.Width {
		return buf
	}
	if len(d.cells) != d.Width {
		d.cells = make([]pixel.Color, d.Width)
	}
	for i := range d.cells {
		lo := i * len(buf) / d.Width
		hi := (i + 1) * len(buf) / d.Width
		var sum pixel.Color
		for _, c := range buf[lo:hi] {
			sum = sum.Add(c)
		}
		d.cells[i] = sum.Scale(1 / float32(hi-lo))
	}
	return d.cells
}

// Close moves the cursor past the strip line.
func (d *Driver) Close() error {
	_, err := io.WriteString(d.out, "\n")
	return err
}
