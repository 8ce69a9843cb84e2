// Package noise implements multi-octave value noise over a 1-D strip.
//
// Each octave is a shuffled ramp: a table holding i/n for every i, put in
// random order once. Sampling interpolates neighbouring entries with a
// smoothstep, so the result is continuous along the strip and cyclic in
// the table size.
package noise

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// Noise holds the permutation tables. It is immutable after New.
type Noise struct {
	tables   [][]float32
	fudgemax float32
}

const (
	MaxOctaves = 16
	// MaxTable bounds the largest table, grain<<(octaves-1).
	MaxTable = 1 << 20
)

// New builds octaves tables, the k-th holding grain<<k entries. Octaves
// are clamped to [1,MaxOctaves] and grain to [1,MaxTable>>(octaves-1)].
func New(grain, octaves int, rng *rand.Rand) *Noise {
	octaves = min(max(octaves, 1), MaxOctaves)
	grain = min(max(grain, 1), MaxTable>>(octaves-1))
	n := &Noise{
		tables:   make([][]float32, octaves),
		fudgemax: 0.5 / (1 - math32.Pow(2, -float32(octaves))),
	}
	for k := range n.tables {
		size := grain << k
		tab := make([]float32, size)
		for i := range tab {
			tab[i] = float32(i) / float32(size)
		}
		for i := range tab {
			j := rng.IntN(size)
			tab[i], tab[j] = tab[j], tab[i]
		}
		n.tables[k] = tab
	}
	return n
}

// Octaves returns the number of tables.
func (n *Noise) Octaves() int { return len(n.tables) }

// Table exposes octave k's table for inspection. Callers must not modify it.
func (n *Noise) Table(k int) []float32 { return n.tables[k] }

// At samples the noise at normalized position x in [0,1) shifted by
// offset, scaled so the sum over all octaves stays below max.
func (n *Noise) At(x, offset, max float32) float32 {
	var val float32
	amp := max * n.fudgemax
	for _, tab := range n.tables {
		size := len(tab)
		basepos := (x - offset) * float32(size)
		seg := math32.Floor(basepos)
		t := basepos - seg
		t = t * t * (3 - 2*t)
		ix := wrap(int(seg), size)
		a := tab[ix]
		b := tab[wrap(ix+1, size)]
		val += (a*(1-t) + b*t) * amp
		amp *= 0.5
	}
	return val
}

// Fill writes one sample per pixel into buf.
func (n *Noise) Fill(buf []float32, offset, max float32) {
	width := float32(len(buf))
	for ix := range buf {
		buf[ix] = n.At(float32(ix)/width, offset, max)
	}
}

func wrap(ix, size int) int {
	ix %= size
	if ix < 0 {
		ix += size
	}
	return ix
}
