package main

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/source"
)

// Frames each test stream may render per Read.
const testBufferFrames = 2048

func decode16(b []byte) []int16 {
	out := make([]int16, len(b)/bytesPerSample)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*bytesPerSample:]))
	}
	return out
}

func TestPCMStream_UnityEncodes16Bit(t *testing.T) {
	var rc resampler.RateControl
	src := resampler.NewSliceSource([]float32{0.5, -0.5, 1, 2}, false)
	s, err := newPCMStream([]resampler.Source{src}, 48000, 48000, testBufferFrames, &rc)
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	assert.Equal(t, []int16{16383, -16383, 32767, 32767, 0}, decode16(buf), "clamped, then silence")
	assert.Equal(t, int64(5), s.Frames())
}

// TestPCMStream_PartialFrames verifies odd read sizes keep the byte stream
// continuous across calls.
func TestPCMStream_PartialFrames(t *testing.T) {
	clip := &source.Clip{SampleRate: 8000, Channels: 2, Data: []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3, 0.4, -0.4}}

	whole, err := newPCMStream(clipSources(clip), 8000, 8000, testBufferFrames, nil)
	require.NoError(t, err)
	want := make([]byte, 12)
	_, err = whole.Read(want)
	require.NoError(t, err)

	split, err := newPCMStream(clipSources(clip), 8000, 8000, testBufferFrames, nil)
	require.NoError(t, err)
	got := make([]byte, 0, 12)
	for _, size := range []int{3, 1, 5, 3} {
		chunk := make([]byte, size)
		n, err := split.Read(chunk)
		require.NoError(t, err)
		require.Equal(t, size, n)
		got = append(got, chunk...)
	}
	assert.Equal(t, want, got)
}

func TestPCMStream_AppliesStagedRateAtTick(t *testing.T) {
	var rc resampler.RateControl
	s, err := newPCMStream([]resampler.Source{toneSource(440, 48000)}, 48000, 48000, testBufferFrames, &rc)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.Ratio(), 0)

	require.NoError(t, rc.Stage(24000, 48000))
	assert.InDelta(t, 1.0, s.Ratio(), 0, "not applied until the next read")

	_, err = s.Read(make([]byte, 64))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.Ratio(), 0)
	assert.False(t, rc.Pending())
}

func TestPCMStream_Level(t *testing.T) {
	src := resampler.SourceFunc(func() float32 { return 0.5 })
	s, err := newPCMStream([]resampler.Source{src, src}, 44100, 48000, testBufferFrames, nil)
	require.NoError(t, err)

	_, err = s.Read(make([]byte, 4096))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.Level(), 0.1, "DC in, DC out")
}

// TestPCMStream_ReadDoesNotAllocate verifies the device callback works
// within the buffers sized at construction.
func TestPCMStream_ReadDoesNotAllocate(t *testing.T) {
	const frames = 64
	var rc resampler.RateControl
	tone := toneSource(440, 44100)
	s, err := newPCMStream([]resampler.Source{tone, tone}, 44100, 48000, frames, &rc)
	require.NoError(t, err)

	big := make([]byte, 10*frames*maxDeviceChannels*bytesPerSample)
	n, err := s.Read(big)
	require.NoError(t, err)
	assert.Equal(t, frames*maxDeviceChannels*bytesPerSample, n, "a Read renders at most the buffered frames")

	p := make([]byte, 250)
	allocs := testing.AllocsPerRun(100, func() {
		_, _ = s.Read(p)
	})
	assert.Zero(t, allocs)
}

func TestDeviceFrames(t *testing.T) {
	assert.Equal(t, 2400, deviceFrames(48000, deviceBuffer))
	assert.Equal(t, 441, deviceFrames(44100, 10*time.Millisecond))
}

func TestPCMStream_Errors(t *testing.T) {
	_, err := newPCMStream(nil, 48000, 48000, testBufferFrames, nil)
	require.ErrorIs(t, err, resampler.ErrInvalidConfig)

	_, err = newPCMStream([]resampler.Source{toneSource(1, 1)}, 0, 48000, testBufferFrames, nil)
	require.ErrorIs(t, err, resampler.ErrInvalidConfig)
}

func TestClipSources_CapsChannels(t *testing.T) {
	clip := &source.Clip{SampleRate: 48000, Channels: 6, Data: make([]float32, 60)}
	assert.Len(t, clipSources(clip), maxDeviceChannels)

	mono := &source.Clip{SampleRate: 48000, Channels: 1, Data: []float32{1}}
	assert.Len(t, clipSources(mono), 1)
}
