package engine

import "math/rand/v2"

// DefaultSeed seeds the engine when no source or seed option is given.
const DefaultSeed uint64 = 1

// pcgStream is the fixed second PCG word; runs are identified by seed alone.
const pcgStream uint64 = 0x9e3779b97f4a7c15

// NewSeededSource returns the production random source for seed.
// The same seed always yields the same sequence across platforms.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}
