package led

import "github.com/chewxy/math32"

// LUT maps an 8-bit channel value to the value sent to the strip.
type LUT [256]byte

// NewLUT builds a gamma curve. gamma <= 0 or 1 gives the identity.
func NewLUT(gamma float32) LUT {
	var l LUT
	for v := range l {
		if gamma <= 0 || gamma == 1 {
			l[v] = byte(v)
			continue
		}
		l[v] = byte(math32.Round(math32.Pow(float32(v)/255, gamma) * 255))
	}
	return l
}
