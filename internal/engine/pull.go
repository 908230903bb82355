package engine

import (
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Source supplies the next input sample of one channel on demand.
// Next is called strictly in sequence and only when a sample is needed.
type Source[F simdops.Float] interface {
	Next() F
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[F simdops.Float] func() F

// Next calls f.
func (f SourceFunc[F]) Next() F {
	return f()
}

// Next produces one output sample for channel ch, reading from src only as
// needed:
//
//   - at unity ratio, exactly one read and the sample is returned unchanged;
//   - while unprimed, three reads seed the window;
//   - otherwise one read per input sample boundary crossed since the
//     previous output.
//
// An invalid channel returns 0 without reading.
func (e *Engine[F]) Next(ch int, src Source[F]) F {
	if !e.valid(ch) {
		return 0
	}
	c := &e.channels[ch]

	if c.ratio == 1 {
		return src.Next()
	}

	if !c.primed {
		x0 := src.Next()
		x1 := src.Next()
		x2 := src.Next()
		c.prime(x0, x1, x2)
	}

	for c.phase >= 1 {
		switch {
		case c.phase >= 3:
			n1 := src.Next()
			n2 := src.Next()
			n3 := src.Next()
			c.skip3(n1, n2, n3)
		case c.phase >= 2:
			n1 := src.Next()
			n2 := src.Next()
			c.skip2(n1, n2)
		default:
			c.skip1(src.Next())
		}
	}

	return c.emit()
}

// SliceSource reads samples from a slice, optionally wrapping around.
// Past the end of a non-looping slice it returns 0.
type SliceSource[F simdops.Float] struct {
	samples []F
	pos     int
	reads   int
	loop    bool
}

// NewSliceSource creates a source over samples.
func NewSliceSource[F simdops.Float](samples []F, loop bool) *SliceSource[F] {
	return &SliceSource[F]{samples: samples, loop: loop}
}

// Next returns the next sample.
func (s *SliceSource[F]) Next() F {
	s.reads++
	if s.pos >= len(s.samples) {
		if !s.loop || len(s.samples) == 0 {
			return 0
		}
		s.pos = 0
	}
	v := s.samples[s.pos]
	s.pos++
	return v
}

// Reads returns how many times Next has been called.
func (s *SliceSource[F]) Reads() int {
	return s.reads
}

// Remaining returns the number of samples left before the end of the slice.
func (s *SliceSource[F]) Remaining() int {
	return len(s.samples) - s.pos
}

// Rewind moves the cursor back to the first sample.
func (s *SliceSource[F]) Rewind() {
	s.pos = 0
}
