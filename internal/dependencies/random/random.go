package random

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
	"sync"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Float64 returns a random float64 in [0, 1)
	Float64() float64

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// Source implements Random over a PCG generator. It is safe for concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// New creates a Source seeded from crypto/rand
func New() *Source {
	var seed [16]byte
	_, _ = rand.Read(seed[:])
	return newSource(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
}

// NewSeeded creates a Source that yields the same sequence for the same seed
func NewSeeded(seed uint64) *Source {
	return newSource(seed, seed^0x9e3779b97f4a7c15)
}

func newSource(seed1, seed2 uint64) *Source {
	return &Source{rng: mathrand.New(mathrand.NewPCG(seed1, seed2))}
}

// Intn returns a random int in [0, n), or 0 when n <= 0
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Float64 returns a random float64 in [0, 1)
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// String generates a random string of the given length from the given alphabet
func (s *Source) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[s.Intn(len(alphabet))]
	}
	return string(result)
}
