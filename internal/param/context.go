package param

import "math/rand/v2"

// NewRand returns a seeded random stream. Equal seeds give equal streams.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Static is a Context whose values are set by hand. Offline tools and
// tests step it explicitly.
type Static struct {
	T   float64
	Dt  float32
	Rng *rand.Rand
}

func NewStatic(seed uint64) *Static {
	return &Static{Rng: NewRand(seed)}
}

func (s *Static) Age() float64     { return s.T }
func (s *Static) TickLen() float32 { return s.Dt }
func (s *Static) Rand() *rand.Rand { return s.Rng }

// Advance moves the context forward by dt seconds.
func (s *Static) Advance(dt float32) {
	s.Dt = dt
	s.T += float64(dt)
}
