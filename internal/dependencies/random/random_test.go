package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntnStaysInRange(t *testing.T) {
	r := New()
	for range 200 {
		n := r.Intn(7)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 7)
	}
	assert.Equal(t, 0, r.Intn(0))
}

func TestFloat64StaysInRange(t *testing.T) {
	r := New()
	for range 200 {
		f := r.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestStringUsesAlphabet(t *testing.T) {
	r := New()
	s := r.String(16, "ab")
	assert.Len(t, s, 16)
	for _, c := range s {
		assert.Contains(t, "ab", string(c))
	}
	assert.Empty(t, r.String(0, "ab"))
}

func TestSeededSourcesRepeat(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for range 50 {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(100), b.Intn(100))
	}
	assert.Equal(t, a.String(8, "XYZ"), b.String(8, "XYZ"))
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a, b := NewSeeded(1), NewSeeded(2)
	same := 0
	for range 20 {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 20)
}
