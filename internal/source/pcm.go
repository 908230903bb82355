package source

import (
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Sample format constants
const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

// MaxValue returns the full-scale integer value for the given bit depth.
// Unknown depths are treated as 16-bit.
func MaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample8:
		return maxInt8
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// IntsToFloat normalises integer PCM into dst and returns the count.
func IntsToFloat(dst []float32, src []int, bitDepth int) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = float32(src[i])
	}
	simdops.Float32Ops().Scale(dst[:n], dst[:n], float32(1/MaxValue(bitDepth)))
	return n
}

// FloatToInts converts normalised samples to integer PCM, clamping to
// [-1, 1], and returns the count.
func FloatToInts[F simdops.Float](dst []int, src []F, bitDepth int) int {
	maxVal := MaxValue(bitDepth)
	n := min(len(dst), len(src))
	for i := range n {
		sample := float64(src[i])
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		dst[i] = int(sample * maxVal)
	}
	return n
}
