package imgseq

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beacon/internal/pixel"
)

func TestWritesScaledFrames(t *testing.T) {
	dir := t.TempDir()
	d, err := New(Options{Dir: dir, Scale: 4, Every: 2})
	require.NoError(t, err)

	frame := []pixel.Color{{R: 1}, {B: 1}}
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Write(frame))
	}
	assert.Equal(t, 2, d.Saved())

	img, err := imgio.Open(filepath.Join(dir, "frame_00001.png"))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())

	r, g, b, _ := img.At(3, 2).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
	assert.Equal(t, color.RGBAModel.Convert(color.RGBA{B: 255, A: 255}), color.RGBAModel.Convert(img.At(4, 0)))
}

func TestNeedsDir(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
