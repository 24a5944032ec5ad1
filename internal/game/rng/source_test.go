package rng_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmnav/farm-navigators/internal/game/rng"
)

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := rng.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := rng.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

// TestSeededSource_Deterministic verifies that two sources with the same seed
// produce identical value sequences.
func TestSeededSource_Deterministic(t *testing.T) {
	a := rng.NewSeededSource(42)
	b := rng.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(52), b.Intn(52), "same seed must yield same sequence")
	}
}

// TestSeededSource_PanicsOnNegative verifies the precondition on n.
func TestSeededSource_PanicsOnNegative(t *testing.T) {
	src := rng.NewSeededSource(1)
	assert.Panics(t, func() { src.Intn(-1) })
}
