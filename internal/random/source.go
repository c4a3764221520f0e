// Package random provides the single seeded generator every synthesis step
// draws from. A Source is not safe for concurrent use; the pipeline owns one
// and threads it through each stage in a fixed order.
package random

import (
	"math/rand/v2"
)

// goldenGamma spreads a single user seed over both PCG state words.
const goldenGamma = 0x9e3779b97f4a7c15

type Source struct {
	seed  uint64
	rng   *rand.Rand
	draws uint64
}

func New(seed uint64) *Source {
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^goldenGamma)),
	}
}

func (s *Source) Seed() uint64 {
	return s.seed
}

// Draws reports how many values have been taken from the source.
func (s *Source) Draws() uint64 {
	return s.draws
}

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 {
	s.draws++
	return s.rng.Float64()
}

// Uniform returns a uniform value in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.Float64()
}

// IntRange returns a uniform integer in [lo, hi). It panics if hi <= lo.
func (s *Source) IntRange(lo, hi int) int {
	s.draws++
	return lo + s.rng.IntN(hi-lo)
}

// Choice returns a uniform index in [0, n).
func (s *Source) Choice(n int) int {
	return s.IntRange(0, n)
}
