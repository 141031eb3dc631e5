package weapon

import "math/rand/v2"

// Rand is the random source used by combat code. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
	NormFloat64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int       { return rand.IntN(n) }
func (globalRand) Float64() float64     { return rand.Float64() }
func (globalRand) NormFloat64() float64 { return rand.NormFloat64() }

// DefaultRand draws from the math/rand/v2 global source.
var DefaultRand Rand = globalRand{}

// NewRand returns a deterministic source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// IntN returns a value in [0, n), or 0 when n <= 0.
func IntN(r Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return r.IntN(n)
}
