package led

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/beacon/internal/layout"
	"github.com/coreman2200/beacon/internal/pixel"
)

func TestStripWritesThroughNRZ(t *testing.T) {
	buf := bytes.Buffer{}
	s, err := New(spitest.NewRecordRaw(&buf), Options{Count: 2})
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", s.String())

	require.NoError(t, s.Write(make([]pixel.Color, 2)))
	black := append([]byte(nil), buf.Bytes()...)
	require.NotEmpty(t, black)

	buf.Reset()
	require.NoError(t, s.Write([]pixel.Color{{R: 1}, {R: 1}}))
	assert.Equal(t, len(black), buf.Len())
	assert.NotEqual(t, black, buf.Bytes())

	require.NoError(t, s.Close())
	assert.Error(t, s.Write(make([]pixel.Color, 2)))
	assert.NoError(t, s.Close())
}

func TestStripRejectsBadFrames(t *testing.T) {
	_, err := New(spitest.NewRecordRaw(&bytes.Buffer{}), Options{})
	assert.Error(t, err)

	s, err := New(spitest.NewRecordRaw(&bytes.Buffer{}), Options{Count: 3})
	require.NoError(t, err)
	assert.Error(t, s.Write(make([]pixel.Color, 2)))
}

func TestStripLayoutAndBrightness(t *testing.T) {
	s, err := New(spitest.NewRecordRaw(&bytes.Buffer{}), Options{
		Count:      3,
		Brightness: 0.5,
		Layout:     layout.Strip{Reverse: true},
	})
	require.NoError(t, err)
	require.NoError(t, s.Write([]pixel.Color{{R: 1}, {}, {B: 1}}))
	assert.Equal(t, []byte{0, 0, 127, 0, 0, 0, 127, 0, 0}, s.raw)
}

func TestLUT(t *testing.T) {
	lin := NewLUT(1)
	assert.Equal(t, byte(128), lin[128])

	g := NewLUT(2.2)
	assert.Equal(t, byte(0), g[0])
	assert.Equal(t, byte(255), g[255])
	assert.Less(t, g[128], byte(64))
}
