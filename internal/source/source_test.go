package source

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stereoClip returns a short stereo clip with distinct channel content.
func stereoClip(frames, rate int) *Clip {
	clip := &Clip{SampleRate: rate, Channels: 2, BitDepth: 16, Data: make([]float32, 2*frames)}
	for i := range frames {
		clip.Data[2*i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		clip.Data[2*i+1] = float32(0.25 * math.Sin(2*math.Pi*1000*float64(i)/float64(rate)))
	}
	return clip
}

func writeWAV(t *testing.T, clip *Clip, bitDepth int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, EncodeWAV(f, clip, bitDepth))
	require.NoError(t, f.Close())
	return path
}

// =============================================================================
// Format Detection
// =============================================================================

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.wav", FormatWAV},
		{"dir/B.WAV", FormatWAV},
		{"song.mp3", FormatMP3},
		{"song.flac", FormatFLAC},
		{"call.ul", FormatULaw},
		{"call.ulaw", FormatULaw},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := FormatOf("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/file.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")

	_, err = Load("clip.ogg")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	dir := t.TempDir()
	for _, name := range []string{"bad.wav", "bad.flac"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("definitely not audio"), 0o644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
}

// =============================================================================
// WAV
// =============================================================================

func TestWAV_RoundTrip(t *testing.T) {
	for _, depth := range []int{16, 24} {
		orig := stereoClip(1000, 44100)
		path := writeWAV(t, orig, depth)

		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 44100, got.SampleRate)
		assert.Equal(t, 2, got.Channels)
		assert.Equal(t, depth, got.BitDepth)
		require.Len(t, got.Data, len(orig.Data))

		tol := 2 / MaxValue(depth)
		for i := range orig.Data {
			require.InDelta(t, orig.Data[i], got.Data[i], tol, "depth %d sample %d", depth, i)
		}
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("RIFF....not a wave file")))
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestWAVWriter_StreamsAndPatchesHeader(t *testing.T) {
	clip := stereoClip(4800, 48000)
	path := filepath.Join(t.TempDir(), "stream.wav")

	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := NewWAVWriter(f, 48000, 16, 2)
	require.NoError(t, err)

	// Several uneven writes.
	data := clip.Data
	for _, n := range []int{2, 998, 4000, 3800} {
		require.NoError(t, w.WriteFloats(data[:n]))
		data = data[n:]
	}
	require.Empty(t, data)
	assert.Equal(t, int64(4800), w.Frames())
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(44+4800*2*2), info.Size())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4800, got.Frames())
	assert.InDelta(t, 0.1, got.Seconds(), 1e-9)
	for i := range clip.Data {
		require.InDelta(t, clip.Data[i], got.Data[i], 2/maxInt16, "sample %d", i)
	}
}

func TestWAVWriter_ClampsAndRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clamp.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	_, err = NewWAVWriter(f, 48000, 12, 1)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = NewWAVWriter(f, 48000, 16, 0)
	require.ErrorIs(t, err, ErrInvalidFile)

	ints := make([]int, 3)
	FloatToInts(ints, []float32{2, -2, 0.5}, 16)
	assert.Equal(t, []int{32767, -32767, 16383}, ints)
}

func TestIntsToFloat(t *testing.T) {
	dst := make([]float32, 3)
	n := IntsToFloat(dst, []int{32767, -32767, 0, 5}, 16)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 1.0, dst[0], 1e-6)
	assert.InDelta(t, -1.0, dst[1], 1e-6)
	assert.Zero(t, dst[2])

	assert.InDelta(t, maxInt24, MaxValue(24), 0)
	assert.InDelta(t, maxInt16, MaxValue(11), 0, "unknown depth falls back to 16-bit")
}

// =============================================================================
// Mu-law
// =============================================================================

func TestULaw_RoundTrip(t *testing.T) {
	orig := &Clip{SampleRate: ULawSampleRate, Channels: 1, BitDepth: 16, Data: make([]float32, 800)}
	for i := range orig.Data {
		orig.Data[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/ULawSampleRate))
	}

	encoded := EncodeULaw(orig)
	require.Len(t, encoded, 800, "one byte per sample")

	path := filepath.Join(t.TempDir(), "call.ul")
	require.NoError(t, os.WriteFile(path, encoded, 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ULawSampleRate, got.SampleRate)
	assert.Equal(t, 1, got.Channels)
	require.Len(t, got.Data, 800)
	for i := range orig.Data {
		// Companding error grows with amplitude; 8 bits keep it under 2% of full scale.
		require.InDelta(t, orig.Data[i], got.Data[i], 0.02, "sample %d", i)
	}
}

// =============================================================================
// Cursor
// =============================================================================

func TestCursor_ReadsOneChannel(t *testing.T) {
	clip := &Clip{SampleRate: 8000, Channels: 2, Data: []float32{1, -1, 2, -2, 3, -3}}

	left := clip.Channel(0, false)
	right := clip.Channel(1, false)
	require.NotNil(t, left)
	require.NotNil(t, right)
	assert.Nil(t, clip.Channel(2, false))
	assert.Nil(t, clip.Channel(-1, false))

	assert.Equal(t, 3, left.Remaining())
	assert.Equal(t, []float32{1, 2, 3, 0}, []float32{left.Next(), left.Next(), left.Next(), left.Next()})
	assert.True(t, left.Done())
	assert.Zero(t, left.Remaining())

	assert.Equal(t, []float32{-1, -2}, []float32{right.Next(), right.Next()})
	assert.Equal(t, 1, right.Remaining())
	assert.False(t, right.Done())

	left.Rewind()
	assert.InDelta(t, 1, left.Next(), 0)
}

func TestCursor_Loops(t *testing.T) {
	clip := &Clip{SampleRate: 8000, Channels: 2, Data: []float32{1, -1, 2, -2}}
	right := clip.Channel(1, true)

	got := make([]float32, 5)
	for i := range got {
		got[i] = right.Next()
	}
	assert.Equal(t, []float32{-1, -2, -1, -2, -1}, got)
	assert.False(t, right.Done())

	empty := (&Clip{Channels: 1}).Channel(0, true)
	assert.Zero(t, empty.Next())
}

func TestClip_EmptyMetrics(t *testing.T) {
	var clip Clip
	assert.Zero(t, clip.Frames())
	assert.Zero(t, clip.Seconds())
}
