// Package waves holds the waveform shapes used for envelopes, oscillating
// parameters and pulse profiles.
package waves

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// Shape selects a waveform. Every shape maps a phase to an intensity in [0,1].
type Shape int

const (
	Flat Shape = iota
	Square
	HalfSquare
	Triangle
	Trapezoid
	SawTooth
	SqrTooth
	SawDecay
	SqrDecay
	Sine
)

var shapeNames = [...]string{
	Flat:       "flat",
	Square:     "square",
	HalfSquare: "halfsquare",
	Triangle:   "triangle",
	Trapezoid:  "trapezoid",
	SawTooth:   "sawtooth",
	SqrTooth:   "sqrtooth",
	SawDecay:   "sawdecay",
	SqrDecay:   "sqrdecay",
	Sine:       "sine",
}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape looks a shape up by name, ignoring case.
func ParseShape(name string) (Shape, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), true
		}
	}
	return Flat, false
}

// Shapes returns every shape in declaration order.
func Shapes() []Shape {
	out := make([]Shape, len(shapeNames))
	for i := range out {
		out[i] = Shape(i)
	}
	return out
}

// Sample returns the shape's intensity at phase. Flat is 1 everywhere and
// callers use it to skip envelope work entirely; every other shape is 0
// outside [0,1).
func (s Shape) Sample(phase float32) float32 {
	if s == Flat {
		return 1
	}
	if phase < 0 || phase >= 1 {
		return 0
	}
	switch s {
	case Square:
		return 1
	case HalfSquare:
		if phase < 0.5 {
			return 1
		}
		return 0
	case Triangle:
		if phase < 0.5 {
			return phase * 2
		}
		return (1 - phase) * 2
	case Trapezoid:
		switch {
		case phase < 0.25:
			return phase * 4
		case phase >= 0.75:
			return (1 - phase) * 4
		default:
			return 1
		}
	case SawTooth:
		return phase
	case SqrTooth:
		return phase * phase
	case SawDecay:
		return 1 - phase
	case SqrDecay:
		return (1 - phase) * (1 - phase)
	case Sine:
		return 0.5 - 0.5*math32.Cos(2*math32.Pi*phase)
	}
	return 0
}
