package entropy

import (
	"math/rand"
	"sync"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float() float64
}

// Chance reports whether an event with probability p fires.
func Chance(src Source, p float64) bool {
	return src.Float() < p
}

// Intn returns a uniform index in [0, n). n must be positive.
func Intn(src Source, n int) int {
	i := int(src.Float() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Uniform returns a uniform float in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float()*(hi-lo)
}

// Seeded is a reproducible pseudo-random source.
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded creates a pseudo-random source from seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

func (s *Seeded) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Crypto draws from crypto/rand on every call.
type Crypto struct{}

func (Crypto) Float() float64 { return cryptoRandFloat() }

// Sequence replays scripted values in order, then returns Fallback forever.
// Used to pin down probability branches in tests.
type Sequence struct {
	mu       sync.Mutex
	values   []float64
	Fallback float64
	drawn    int
}

// NewSequence creates a scripted source.
func NewSequence(fallback float64, values ...float64) *Sequence {
	return &Sequence{values: values, Fallback: fallback}
}

func (s *Sequence) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn++
	if len(s.values) == 0 {
		return s.Fallback
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

// Push appends more scripted values.
func (s *Sequence) Push(values ...float64) {
	s.mu.Lock()
	s.values = append(s.values, values...)
	s.mu.Unlock()
}

// Drawn returns how many values have been consumed.
func (s *Sequence) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}

// FromConfig picks the production source: random.org when a key is present,
// otherwise a seeded generator (seed 0 means crypto/rand).
func FromConfig(randomOrgKey string, seed int64) Source {
	if c := NewClient(randomOrgKey); c.Enabled() {
		return c
	}
	if seed == 0 {
		return Crypto{}
	}
	return NewSeeded(seed)
}
