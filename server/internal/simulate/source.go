package simulate

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source supplies uniform random draws.
type Source interface {
	// Int returns an integer in [lo, hi].
	Int(lo, hi int) int
	// Float returns a float64 in [lo, hi).
	Float(lo, hi float64) float64
}

// Rand is a Source backed by a PCG generator. It is safe for concurrent use.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a Rand with a fixed seed; equal seeds give equal sequences.
func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandom returns a Rand seeded from the clock.
func NewRandom() *Rand {
	return NewRand(uint64(time.Now().UnixNano()))
}

// Int returns an integer in [lo, hi]. It returns lo when hi <= lo.
func (s *Rand) Int(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.r.IntN(hi-lo+1)
}

// Float returns a float64 in [lo, hi). It returns lo when hi <= lo.
func (s *Rand) Float(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.r.Float64()*(hi-lo)
}
