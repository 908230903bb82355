package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
	"github.com/tphakala/go-stream-resampler/internal/source"
)

// pcmStream renders the pull form into 16-bit little-endian PCM for the
// audio device. The device goroutine calls Read; each call is one tick, and
// staged rate changes are applied at its start.
type pcmStream struct {
	r        *resampler.Resampler
	rc       *resampler.RateControl
	sources  []resampler.Source
	channels int

	maxFrames int // frames one Read may render
	scratch   []float32
	ints      []int
	bytes     []byte
	pending   []byte // rendered bytes the previous Read could not return

	level  atomic.Uint64 // float64 bits of the last block's RMS
	frames atomic.Int64
}

// newPCMStream converts sources (one per channel) from inputRate to
// deviceRate. Buffers for bufferFrames frames are allocated here, so Read
// never allocates; a larger Read returns a short count.
func newPCMStream(sources []resampler.Source, inputRate, deviceRate float64, bufferFrames int, rc *resampler.RateControl) (*pcmStream, error) {
	r, err := resampler.New(&resampler.Config{
		InputRate:  inputRate,
		OutputRate: deviceRate,
		Channels:   len(sources),
	})
	if err != nil {
		return nil, err
	}
	channels := len(sources)
	bufferFrames = max(bufferFrames, 1)
	total := bufferFrames * channels
	return &pcmStream{
		r:         r,
		rc:        rc,
		sources:   sources,
		channels:  channels,
		maxFrames: bufferFrames,
		scratch:   make([]float32, total),
		ints:      make([]int, total),
		bytes:     make([]byte, total*bytesPerSample),
	}, nil
}

// deviceFrames returns the frames of audio in d at rate Hz.
func deviceFrames(rate int, d time.Duration) int {
	return int(int64(rate) * int64(d) / int64(time.Second))
}

// Read fills p with whole or partial frames of interleaved PCM.
func (s *pcmStream) Read(p []byte) (int, error) {
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	if n == len(p) {
		return n, nil
	}

	s.r.ApplyStaged(s.rc)

	frameBytes := s.channels * bytesPerSample
	frames := min((len(p)-n+frameBytes-1)/frameBytes, s.maxFrames)
	rendered := s.render(frames)

	m := copy(p[n:], rendered)
	s.pending = rendered[m:]
	return n + m, nil
}

// render pulls frames output frames (at most maxFrames) and encodes them
// into the preallocated buffers.
func (s *pcmStream) render(frames int) []byte {
	total := frames * s.channels
	buf := s.scratch[:total]

	for i := range frames {
		base := i * s.channels
		for ch, src := range s.sources {
			buf[base+ch] = s.r.Next(ch, src)
		}
	}

	s.level.Store(math.Float64bits(simdops.RMS(buf)))
	s.frames.Add(int64(frames))

	ints := s.ints[:total]
	source.FloatToInts(ints, buf, bitsPerSample16)
	out := s.bytes[:total*bytesPerSample]
	for i, v := range ints {
		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(int16(v)))
	}
	return out
}

// Level returns the RMS of the most recently rendered block.
func (s *pcmStream) Level() float64 {
	return math.Float64frombits(s.level.Load())
}

// Frames returns the number of frames rendered so far.
func (s *pcmStream) Frames() int64 {
	return s.frames.Load()
}

// Ratio returns channel 0's published conversion ratio.
func (s *pcmStream) Ratio() float64 {
	return s.r.RatioSnapshot(0)
}

// clipSources returns looping cursors over the first maxDeviceChannels
// channels of clip.
func clipSources(clip *source.Clip) []resampler.Source {
	n := min(clip.Channels, maxDeviceChannels)
	sources := make([]resampler.Source, n)
	for ch := range n {
		sources[ch] = clip.Channel(ch, true)
	}
	return sources
}

// toneSource returns a sine generator at freq for the given rate.
func toneSource(freq, rate float64) resampler.Source {
	step := 2 * math.Pi * freq / rate
	phase := 0.0
	return resampler.SourceFunc(func() float32 {
		v := float32(toneAmplitude * math.Sin(phase))
		phase = math.Mod(phase+step, 2*math.Pi)
		return v
	})
}
