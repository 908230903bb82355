// Package simdops provides generic SIMD operations for float32 and float64 types.
// This enables a single codebase to support both precision levels without duplication.
//
// None of these operations are used inside the per-sample interpolation loop;
// they serve the buffer plumbing around it (interleaving, level metering,
// integer PCM normalisation).
package simdops

import (
	"math"

	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
// Function pointers allow type-safe generic code while delegating
// to optimized type-specific implementations.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []F)

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)
}

// Pre-instantiated operations for each float type.
var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Interleave2:      f32.Interleave2,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Interleave2:      f64.Interleave2,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
	}
)

// For returns the Ops instance for type F.
// The type switch happens at instantiation time, not in hot paths.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Float32Ops returns the float32 SIMD operations.
func Float32Ops() *Ops[float32] {
	return &ops32
}

// Float64Ops returns the float64 SIMD operations.
func Float64Ops() *Ops[float64] {
	return &ops64
}

// Info describes the instruction set selected by the simd package at startup.
func Info() string {
	return cpu.Info()
}

// RMS returns the root mean square of a, or 0 for an empty slice.
func RMS[F Float](a []F) float64 {
	if len(a) == 0 {
		return 0
	}
	sq := For[F]().DotProductUnsafe(a, a)
	return math.Sqrt(float64(sq) / float64(len(a)))
}

// Mean returns the arithmetic mean of a, or 0 for an empty slice.
func Mean[F Float](a []F) float64 {
	if len(a) == 0 {
		return 0
	}
	return float64(For[F]().Sum(a)) / float64(len(a))
}

// Interleave writes the planar channels a and b into dst as L R L R ...
// dst must hold 2*min(len(a), len(b)) samples.
func Interleave[F Float](dst, a, b []F) {
	n := min(len(a), len(b))
	For[F]().Interleave2(dst[:2*n], a[:n], b[:n])
}

// Deinterleave splits an interleaved L R L R buffer into a and b.
// It returns the number of frames written.
func Deinterleave[F Float](src, a, b []F) int {
	n := min(len(src)/2, len(a), len(b))
	for i := range n {
		a[i] = src[2*i]
		b[i] = src[2*i+1]
	}
	return n
}
