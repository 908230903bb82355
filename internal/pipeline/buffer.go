// Package pipeline stages resampled audio between producers and consumers
// that run with different block sizes.
package pipeline

import (
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Ring is a fixed-capacity circular buffer of samples.
// Capacity is rounded up to a power of 2 so positions wrap with a mask
// instead of a modulo. It never grows: writing into a full ring overwrites
// the oldest samples. A Ring is not safe for concurrent use.
type Ring[F simdops.Float] struct {
	data     []F
	mask     int
	size     int
	readPos  int
	writePos int
	dropped  int64
}

// NewRing creates a ring holding at least capacity samples.
func NewRing[F simdops.Float](capacity int) *Ring[F] {
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}

	return &Ring[F]{
		data: make([]F, cap2),
		mask: cap2 - 1,
	}
}

// Write appends samples, overwriting the oldest ones when the ring is full.
func (r *Ring[F]) Write(samples []F) {
	// Only the newest len(data) samples can survive.
	if excess := len(samples) - len(r.data); excess > 0 {
		r.dropped += int64(excess)
		samples = samples[excess:]
	}

	for _, sample := range samples {
		if r.size == len(r.data) {
			r.readPos = (r.readPos + 1) & r.mask
			r.size--
			r.dropped++
		}
		r.data[r.writePos] = sample
		r.writePos = (r.writePos + 1) & r.mask
		r.size++
	}
}

// ReadOne removes and returns the oldest sample.
// ok is false when the ring is empty.
func (r *Ring[F]) ReadOne() (sample F, ok bool) {
	if r.size == 0 {
		return 0, false
	}
	sample = r.data[r.readPos]
	r.readPos = (r.readPos + 1) & r.mask
	r.size--
	return sample, true
}

// Read moves up to len(dst) samples into dst and returns the count.
func (r *Ring[F]) Read(dst []F) int {
	n := min(len(dst), r.size)
	for i := range n {
		dst[i] = r.data[r.readPos]
		r.readPos = (r.readPos + 1) & r.mask
	}
	r.size -= n
	return n
}

// Available returns the number of samples available for reading.
func (r *Ring[F]) Available() int {
	return r.size
}

// Space returns the number of samples that fit without overwriting.
func (r *Ring[F]) Space() int {
	return len(r.data) - r.size
}

// Capacity returns the ring capacity.
func (r *Ring[F]) Capacity() int {
	return len(r.data)
}

// Dropped returns how many samples were overwritten before being read.
func (r *Ring[F]) Dropped() int64 {
	return r.dropped
}

// Clear removes all samples from the ring.
func (r *Ring[F]) Clear() {
	r.size = 0
	r.readPos = 0
	r.writePos = 0
}
