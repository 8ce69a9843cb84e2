// Package layout maps logical strip positions onto physical LED indices.
package layout

import "github.com/coreman2200/beacon/internal/pixel"

// Strip describes how the LEDs are wired. A strip can be folded into rows
// of Width pixels; with FlipEveryRow the odd rows run backwards
// (serpentine). Reverse feeds the strip from its far end, and Offset
// rotates the first logical pixel along the wire.
type Strip struct {
	Count        int
	Width        int
	FlipEveryRow bool
	Reverse      bool
	Offset       int
}

// Index maps logical i -> physical LED index (0..Count-1).
func (s Strip) Index(i int) int {
	idx := i
	if s.Width > 0 && s.FlipEveryRow {
		row, col := idx/s.Width, idx%s.Width
		if row%2 == 1 {
			// a short last row still starts at its row origin
			w := min(s.Width, s.Count-row*s.Width)
			col = w - 1 - col
		}
		idx = row*s.Width + col
	}
	if s.Reverse {
		idx = s.Count - 1 - idx
	}
	if s.Offset != 0 && s.Count > 0 {
		idx = ((idx+s.Offset)%s.Count + s.Count) % s.Count
	}
	return idx
}

// Identity reports whether Index is the identity map.
func (s Strip) Identity() bool {
	return !(s.Width > 0 && s.FlipEveryRow) && !s.Reverse && s.Offset%max(s.Count, 1) == 0
}

// Apply writes src into dst in physical order.
func (s Strip) Apply(dst, src []pixel.Color) {
	if s.Identity() {
		copy(dst, src)
		return
	}
	for i := 0; i < s.Count && i < len(src); i++ {
		dst[s.Index(i)] = src[i]
	}
}
