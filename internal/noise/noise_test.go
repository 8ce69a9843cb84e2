package noise

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/beacon/internal/param"
)

func TestTablesAreShuffledRamps(t *testing.T) {
	n := New(8, 3, param.NewRand(5))
	require.Equal(t, 3, n.Octaves())
	for k := 0; k < n.Octaves(); k++ {
		tab := append([]float32(nil), n.Table(k)...)
		size := 8 << k
		require.Len(t, tab, size)
		sort.Slice(tab, func(i, j int) bool { return tab[i] < tab[j] })
		for i, v := range tab {
			assert.Equal(t, float32(i)/float32(size), v)
		}
	}
}

func TestAmplitudeBound(t *testing.T) {
	const max = 0.8
	for octaves := 1; octaves <= 6; octaves++ {
		n := New(16, octaves, param.NewRand(uint64(octaves)))
		buf := make([]float32, 4096)
		for _, off := range []float32{0, 0.13, 0.5, -0.7} {
			n.Fill(buf, off, max)
			for ix, v := range buf {
				require.LessOrEqual(t, v, float32(max)+1e-5, "octaves=%d ix=%d", octaves, ix)
				require.GreaterOrEqual(t, v, float32(0))
			}
		}
	}
}

func TestSamplesHitTableEntries(t *testing.T) {
	n := New(4, 1, param.NewRand(9))
	tab := n.Table(0)
	amp := n.fudgemax
	for i := range tab {
		x := float32(i) / 4
		assert.InDelta(t, tab[i]*amp, n.At(x, 0, 1), 1e-6)
	}
}

func TestOffsetWrapsAround(t *testing.T) {
	n := New(8, 2, param.NewRand(2))
	assert.InDelta(t, n.At(0.25, 0, 1), n.At(0.25, 1, 1), 1e-5)
	assert.InDelta(t, n.At(0.1, -0.5, 1), n.At(0.6, 0, 1), 1e-5)
}

func TestDegenerateSizes(t *testing.T) {
	n := New(0, 0, param.NewRand(1))
	assert.Equal(t, 1, n.Octaves())
	assert.Equal(t, float32(0), n.At(0.3, 0, 1))
}

func TestNewClampsTableSizes(t *testing.T) {
	n := New(1<<30, 59, param.NewRand(1))
	require.Equal(t, MaxOctaves, n.Octaves())
	assert.Len(t, n.Table(MaxOctaves-1), MaxTable)
	assert.Len(t, n.Table(0), MaxTable>>(MaxOctaves-1))

	n = New(-4, 0, param.NewRand(1))
	require.Equal(t, 1, n.Octaves())
	assert.Len(t, n.Table(0), 1)
}
