// Package testutil provides reusable test helpers for resampler tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Default tolerances for various test scenarios.
const (
	// ExactTolerance is for values the algorithm must reproduce bit for bit.
	ExactTolerance = 0

	// SampleTolerance matches single-precision arithmetic on values below 10.
	SampleTolerance = 1e-4

	// LooseTolerance covers values quoted with four or five significant digits.
	LooseTolerance = 1e-3
)

// SawtoothPeriod is the length of the reference sawtooth ramp.
const SawtoothPeriod = 8

// Sawtooth returns a looping source over 0, 1, ..., 7 and a pointer to its
// read counter.
func Sawtooth[F simdops.Float]() (next func() F, reads *int) {
	pos := 0
	count := 0
	return func() F {
		v := F(pos)
		pos++
		if pos >= SawtoothPeriod {
			pos = 0
		}
		count++
		return v
	}, &count
}

// SawtoothBlock returns n samples of the looping 0..7 ramp.
func SawtoothBlock[F simdops.Float](n int) []F {
	s := make([]F, n)
	for i := range s {
		s[i] = F(i % SawtoothPeriod)
	}
	return s
}

// Sine returns n samples of a unit sine at freq Hz sampled at rate Hz.
func Sine[F simdops.Float](n int, freq, rate float64) []F {
	s := make([]F, n)
	omega := 2 * math.Pi * freq / rate
	for i := range s {
		s[i] = F(math.Sin(omega * float64(i)))
	}
	return s
}

// Interleave builds an interleaved buffer from planar channels of equal length.
func Interleave[F simdops.Float](channels ...[]F) []F {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]F, frames*len(channels))
	for ch, data := range channels {
		for i, v := range data {
			out[i*len(channels)+ch] = v
		}
	}
	return out
}

// Strided returns every stride-th element of s starting at offset.
func Strided[F simdops.Float](s []F, offset, stride int) []F {
	var out []F
	for i := offset; i < len(s); i += stride {
		out = append(out, s[i])
	}
	return out
}

// AssertSamplesInDelta verifies that actual matches expected element-wise.
func AssertSamplesInDelta[F simdops.Float](t *testing.T, expected []float64, actual []F, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if !assert.InDelta(t, expected[i], float64(actual[i]), delta,
			"sample %d: got %v, want %v", i, actual[i], expected[i]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf[F simdops.Float](t *testing.T, s []F) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange[F simdops.Float](t *testing.T, s []F, minVal, maxVal float64) bool {
	t.Helper()
	for i, v := range s {
		if float64(v) < minVal || float64(v) > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, float64(v), minVal, maxVal)
		}
	}
	return true
}

// AssertUntouched verifies every element of s still equals fill.
func AssertUntouched[F simdops.Float](t *testing.T, s []F, fill F) bool {
	t.Helper()
	for i, v := range s {
		if v != fill {
			return assert.Fail(t, "buffer modified", "s[%d]=%v, want untouched %v", i, v, fill)
		}
	}
	return true
}
