package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beacon/internal/pixel"
)

func TestWriteTrueColor(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, 0, termenv.WithProfile(termenv.TrueColor))
	require.NoError(t, d.Write([]pixel.Color{{R: 1}, {B: 1}}))

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "\r"))
	assert.Contains(t, s, "48;2;255;0;0")
	assert.Contains(t, s, "48;2;0;0;255")
}

func TestWriteAscii(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, 0, termenv.WithProfile(termenv.Ascii))
	require.NoError(t, d.Write(make([]pixel.Color, 3)))
	assert.Equal(t, "\r   ", out.String())
}

func TestDownsample(t *testing.T) {
	d := New(&bytes.Buffer{}, 2)
	cells := d.downsample([]pixel.Color{pixel.Grey(0), pixel.Grey(1), pixel.Grey(1), pixel.Grey(1)})
	require.Len(t, cells, 2)
	assert.Equal(t, pixel.Grey(0.5), cells[0])
	assert.Equal(t, pixel.Grey(1), cells[1])
}
