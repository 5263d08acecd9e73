package scheduler

import (
	"math/rand"
	"sync"
)

// Selector centralizes the randomness of the engagement cycles so tests can
// seed it deterministically.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a selector seeded with the given value.
func NewSelector(seed int64) *Selector {
	return &Selector{rng: rand.New(rand.NewSource(seed))}
}

// SampleFraction picks roughly fraction of n indices, at least one when n > 0.
// The returned indices are in random order.
func (s *Selector) SampleFraction(n int, fraction float64) []int {
	if n <= 0 {
		return nil
	}
	k := int(float64(n) * fraction)
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	perm := s.rng.Perm(n)
	return perm[:k]
}

// PickOne returns a random index in [0, n).
func (s *Selector) PickOne(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Sample picks k distinct indices from [0, n), in random order. When k >= n
// it returns all n indices shuffled.
func (s *Selector) Sample(n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	perm := s.rng.Perm(n)
	return perm[:k]
}

// IntBetween returns a random integer in [lo, hi] inclusive.
func (s *Selector) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Intn(hi-lo+1)
}

// CoinFlip returns true with probability p.
func (s *Selector) CoinFlip(p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}
