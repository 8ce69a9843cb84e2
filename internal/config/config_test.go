package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadYAML(t *testing.T) {
	p := write(t, "beacon.yaml", `
script: shows/rainbow.beacon
pixels: 150
fps: 50
driver: spi
cycle: [a.beacon, /abs/b.beacon]
cycle_fade: 0.5
post:
  budget_ma: 2000
strip:
  width: 30
  flip_every_row: true
spi:
  port: /dev/spidev0.0
  freq_khz: 2400
`)
	c, err := Load(p)
	require.NoError(t, err)
	dir := filepath.Dir(p)
	assert.Equal(t, filepath.Join(dir, "shows/rainbow.beacon"), c.Script)
	assert.Equal(t, 150, c.Pixels)
	assert.Equal(t, 50, c.FPS)
	assert.Equal(t, "spi", c.Driver)
	assert.Equal(t, []string{filepath.Join(dir, "a.beacon"), "/abs/b.beacon"}, c.Cycle)
	assert.Equal(t, 0.5, c.CycleFade)
	assert.Equal(t, 2000.0, c.Post.BudgetMA)
	assert.Equal(t, Strip{Width: 30, FlipEveryRow: true}, c.Strip)
	assert.Equal(t, "/dev/spidev0.0", c.SPI.Port)
	assert.Equal(t, 2400, c.SPI.FreqKHz)
}

func TestLoadTOML(t *testing.T) {
	p := write(t, "beacon.toml", `
script = "/shows/fire.beacon"
pixels = 60
driver = "term"
seed = 42
watch = true

[post]
white_cap = 2.4
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "/shows/fire.beacon", c.Script)
	assert.Equal(t, 60, c.Pixels)
	assert.Equal(t, "term", c.Driver)
	assert.Equal(t, uint64(42), c.Seed)
	assert.True(t, c.Watch)
	assert.Equal(t, 2.4, c.Post.WhiteCap)
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), name)
			in := &Config{Script: "/s.beacon", Pixels: 10, FPS: 30, Driver: "sim"}
			require.NoError(t, Save(p, in))
			out, err := Load(p)
			require.NoError(t, err)
			assert.Equal(t, in.Script, out.Script)
			assert.Equal(t, in.Pixels, out.Pixels)
			assert.Equal(t, in.Driver, out.Driver)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(write(t, "bad.toml", "pixels = [\n"))
	assert.Error(t, err)
}
