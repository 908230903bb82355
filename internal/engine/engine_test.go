package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-stream-resampler/internal/testutil"
)

// =============================================================================
// Construction
// =============================================================================

func TestNew_ClampsChannels(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{16, 16},
		{17, 16},
		{1000, 16},
	}

	for _, tt := range tests {
		e := New[float32](tt.requested)
		assert.Equal(t, tt.want, e.Channels(), "requested %d", tt.requested)
		assert.Equal(t, tt.want, e.InputStride(), "stride defaults to channel count")
		assert.Equal(t, tt.want, e.OutputStride())
	}
}

func TestNew_StartsAtUnityUnprimed(t *testing.T) {
	e := New[float64](4)
	for ch := range 4 {
		assert.InDelta(t, 1.0, e.Ratio(ch), 0)
		assert.InDelta(t, 1.0, e.RatioSnapshot(ch), 0)
		assert.False(t, e.Primed(ch))
	}
}

func TestEngine_Info(t *testing.T) {
	e := New[float32](2)
	assert.Equal(t, 4, e.FilterLength())
	assert.Equal(t, 2, e.Lookahead())
	assert.Positive(t, e.MemoryUsage())
}

func TestMemoryUsage_TracksSampleType(t *testing.T) {
	// Six samples plus the primed flag per channel, and one published
	// float64 ratio per channel.
	assert.Equal(t, int64(MaxChannels*(28+8)), New[float32](1).MemoryUsage())
	assert.Equal(t, int64(MaxChannels*(56+8)), New[float64](1).MemoryUsage())
}

// =============================================================================
// Rates
// =============================================================================

func TestSetRate_RejectsInvalid(t *testing.T) {
	invalid := [][2]float64{
		{0, 48000},
		{48000, 0},
		{-44100, 48000},
		{48000, -1},
		{math.NaN(), 48000},
		{48000, math.NaN()},
		{math.Inf(1), 48000},
		{48000, math.Inf(1)},
		{48000 * 300, 48000},
		{48000, 48000 * 300},
	}

	e := New[float32](2)
	require.True(t, e.SetRate(24000, 48000))
	src := NewSliceSource(testutil.SawtoothBlock[float32](8), true)
	e.Next(0, src)
	require.True(t, e.Primed(0))

	for _, r := range invalid {
		assert.False(t, e.SetRate(r[0], r[1]), "rates %v/%v", r[0], r[1])
		assert.False(t, e.SetChannelRate(0, r[0], r[1]), "rates %v/%v", r[0], r[1])
		assert.ErrorIs(t, ValidateRates(r[0], r[1]), ErrInvalidRate)
	}
	assert.InDelta(t, 0.5, e.Ratio(0), 0)
	assert.True(t, e.Primed(0), "rejected rates must not flush history")
}

func TestSetRate_AcceptsRangeLimits(t *testing.T) {
	e := New[float32](1)
	assert.True(t, e.SetRate(48000*256, 48000))
	assert.InDelta(t, 256.0, e.Ratio(0), 0)
	assert.True(t, e.SetRate(48000, 48000*256))
	assert.InDelta(t, 1.0/256.0, e.Ratio(0), 0)
	assert.NoError(t, ValidateRates(44100, 48000))
}

// TestSetRate_ReprimesOnlyOnChange verifies that setting the same ratio
// keeps history while a new ratio discards it.
func TestSetRate_ReprimesOnlyOnChange(t *testing.T) {
	e := New[float32](1)
	require.True(t, e.SetRate(44100, 48000))

	src := NewSliceSource(testutil.SawtoothBlock[float32](8), true)
	e.Next(0, src)
	require.True(t, e.Primed(0))

	require.True(t, e.SetRate(44100, 48000))
	assert.True(t, e.Primed(0), "same ratio keeps history")

	require.True(t, e.SetRate(88200, 96000))
	assert.True(t, e.Primed(0), "equal ratio from different rates keeps history")

	require.True(t, e.SetRate(48000, 44100))
	assert.False(t, e.Primed(0), "new ratio discards history")

	before := src.Reads()
	e.Next(0, src)
	assert.Equal(t, before+3, src.Reads(), "next output re-primes")
}

func TestSetChannelRate(t *testing.T) {
	e := New[float32](3)

	assert.True(t, e.SetChannelRate(1, 24000, 48000))
	assert.InDelta(t, 1.0, e.Ratio(0), 0)
	assert.InDelta(t, 0.5, e.Ratio(1), 0)
	assert.InDelta(t, 1.0, e.Ratio(2), 0)

	assert.False(t, e.SetChannelRate(3, 24000, 48000))
	assert.False(t, e.SetChannelRate(-1, 24000, 48000))
	assert.Zero(t, e.Ratio(3))
	assert.Zero(t, e.RatioSnapshot(-1))
	assert.False(t, e.Primed(99))
}

func TestRatioSnapshot_TracksRatio(t *testing.T) {
	e := New[float32](2)
	require.True(t, e.SetRate(44100, 48000))
	require.True(t, e.SetChannelRate(1, 48000, 8000))

	assert.InDelta(t, float64(e.Ratio(0)), e.RatioSnapshot(0), 0)
	assert.InDelta(t, 6.0, e.RatioSnapshot(1), 0)

	e.Reset()
	assert.InDelta(t, 1.0, e.RatioSnapshot(0), 0)
	assert.InDelta(t, 1.0, e.RatioSnapshot(1), 0)
}

// =============================================================================
// Channel Independence
// =============================================================================

// TestEngine_ChannelsAreIndependent verifies that interleaving calls for
// different channels gives the same results as separate engines.
func TestEngine_ChannelsAreIndependent(t *testing.T) {
	multi := New[float32](3)
	require.True(t, multi.SetChannelRate(0, 24000, 48000))
	require.True(t, multi.SetChannelRate(1, 48000, 36000))
	require.True(t, multi.SetChannelRate(2, 36000, 48000))

	singles := make([]*Engine[float32], 3)
	rates := [][2]float64{{24000, 48000}, {48000, 36000}, {36000, 48000}}
	for ch, r := range rates {
		singles[ch] = New[float32](1)
		require.True(t, singles[ch].SetRate(r[0], r[1]))
	}

	input := testutil.Sine[float32](512, 1000, 48000)
	multiSrc := make([]*SliceSource[float32], 3)
	singleSrc := make([]*SliceSource[float32], 3)
	for ch := range 3 {
		multiSrc[ch] = NewSliceSource(input, true)
		singleSrc[ch] = NewSliceSource(input, true)
	}

	for i := range 300 {
		ch := i % 3
		if i%7 == 0 {
			ch = (ch + 1) % 3
		}
		require.Equal(t,
			singles[ch].Next(0, singleSrc[ch]),
			multi.Next(ch, multiSrc[ch]),
			"call %d channel %d", i, ch)
	}
}

// =============================================================================
// Strides, Flush, Reset
// =============================================================================

func TestStrides_Clamp(t *testing.T) {
	e := New[float32](2)

	e.SetInputStride(0)
	e.SetOutputStride(-3)
	assert.Equal(t, 1, e.InputStride())
	assert.Equal(t, 1, e.OutputStride())

	e.SetInputStride(1 << 20)
	e.SetOutputStride(65536)
	assert.Equal(t, 65536, e.InputStride())
	assert.Equal(t, 65536, e.OutputStride())

	e.SetInputStride(8)
	assert.Equal(t, 8, e.InputStride())
}

func TestFlush(t *testing.T) {
	e := New[float32](2)
	require.True(t, e.SetRate(24000, 48000))

	src := NewSliceSource(testutil.SawtoothBlock[float32](8), true)
	e.Next(0, src)
	e.Next(1, src)
	require.True(t, e.Primed(0))
	require.True(t, e.Primed(1))

	assert.True(t, e.FlushChannel(1))
	assert.True(t, e.Primed(0))
	assert.False(t, e.Primed(1))
	assert.False(t, e.FlushChannel(2))

	e.Flush()
	assert.False(t, e.Primed(0))
	assert.InDelta(t, 0.5, e.Ratio(0), 0, "flush keeps the ratio")

	// A flushed channel restarts exactly like a fresh one.
	fresh := New[float32](1)
	require.True(t, fresh.SetRate(24000, 48000))
	a := NewSliceSource(testutil.SawtoothBlock[float32](8), true)
	b := NewSliceSource(testutil.SawtoothBlock[float32](8), true)
	for i := range 20 {
		require.Equal(t, fresh.Next(0, b), e.Next(0, a), "output %d", i)
	}
}

func TestReset(t *testing.T) {
	e := New[float32](2)
	require.True(t, e.SetRate(24000, 48000))
	e.SetInputStride(5)

	src := NewSliceSource(testutil.SawtoothBlock[float32](8), true)
	e.Next(0, src)

	e.Reset()
	assert.False(t, e.Primed(0))
	assert.InDelta(t, 1.0, e.Ratio(0), 0)
	assert.InDelta(t, 1.0, e.Ratio(1), 0)
	assert.Equal(t, 5, e.InputStride(), "reset keeps strides")
}
