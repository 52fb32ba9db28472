package game

import (
	"math/rand/v2"

	"netrunner/pkg/types"
)

// RNG is the single random stream the game draws from.
type RNG interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a PCG stream seeded from seed. The same seed always
// produces the same world.
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9E3779B97F4A7C15))
}

// randInt draws uniformly from the inclusive interval [lo, hi].
func randInt(r RNG, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

func randRange(r RNG, rg types.Range) int { return randInt(r, rg.Min, rg.Max) }

func uniform(r RNG, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

func chance(r RNG, p float64) bool { return r.Float64() < p }

func pick[T any](r RNG, xs []T) T {
	return xs[r.IntN(len(xs))]
}

// sample draws k distinct elements without replacement, preserving draw
// order. k is clamped to len(xs).
func sample[T any](r RNG, xs []T, k int) []T {
	if k > len(xs) {
		k = len(xs)
	}
	pool := append([]T(nil), xs...)
	out := make([]T, 0, k)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		out = append(out, pool[i])
	}
	return out
}

// rngReader adapts an RNG to io.Reader so identifiers can be drawn from the
// seeded stream.
type rngReader struct{ r RNG }

func (rr rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.r.IntN(256))
	}
	return len(p), nil
}
