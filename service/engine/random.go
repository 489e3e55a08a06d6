package engine

import "math/rand"

// Random supplies branch draws and I/O duration samples; *rand.Rand satisfies it.
type Random interface {
	// Intn returns a uniform integer in [0,n).
	Intn(n int) int
	// NormFloat64 returns a standard normal sample.
	NormFloat64() float64
}

// NewRandom returns a seeded source.
func NewRandom(seed int64) Random {
	return rand.New(rand.NewSource(seed))
}
