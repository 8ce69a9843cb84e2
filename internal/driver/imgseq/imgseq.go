// Package imgseq writes frames to disk as numbered PNG files, for offline
// renders and for turning a show into a video with an external encoder.
package imgseq

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"

	"github.com/coreman2200/beacon/internal/pixel"
)

type Options struct {
	Dir    string
	Scale  int // pixel width in the image, default 8
	Height int // image height, default Scale
	Every  int // keep every Nth frame, default 1
}

// Driver saves frame_00000.png, frame_00001.png, ... into Dir.
type Driver struct {
	opts  Options
	count int
	saved int
	strip *image.RGBA
}

func New(o Options) (*Driver, error) {
	if o.Dir == "" {
		return nil, fmt.Errorf("imgseq: no output directory")
	}
	if o.Scale <= 0 {
		o.Scale = 8
	}
	if o.Height <= 0 {
		o.Height = o.Scale
	}
	if o.Every <= 0 {
		o.Every = 1
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("imgseq: %w", err)
	}
	return &Driver{opts: o}, nil
}

func (d *Driver) Write(buf []pixel.Color) error {
	d.count++
	if (d.count-1)%d.opts.Every != 0 {
		return nil
	}
	if d.strip == nil || d.strip.Rect.Dx() != len(buf) {
		d.strip = image.NewRGBA(image.Rect(0, 0, len(buf), 1))
	}
	pixel.PutRGBA(d.strip.Pix, buf)
	img := transform.Resize(d.strip, len(buf)*d.opts.Scale, d.opts.Height, transform.NearestNeighbor)

	name := filepath.Join(d.opts.Dir, fmt.Sprintf("frame_%05d.png", d.saved))
	if err := imgio.Save(name, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("imgseq: %w", err)
	}
	d.saved++
	return nil
}

// Saved is the number of files written so far.
func (d *Driver) Saved() int { return d.saved }
