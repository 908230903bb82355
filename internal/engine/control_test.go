package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-stream-resampler/internal/testutil"
)

func TestRateControl_StageAndApply(t *testing.T) {
	e := New[float32](2)
	var rc RateControl

	assert.False(t, rc.Pending())
	assert.False(t, e.ApplyStaged(&rc), "nothing staged")

	require.NoError(t, rc.Stage(24000, 48000))
	assert.True(t, rc.Pending())
	assert.InDelta(t, 1.0, e.Ratio(0), 0, "staging alone changes nothing")

	assert.True(t, e.ApplyStaged(&rc))
	assert.False(t, rc.Pending())
	assert.InDelta(t, 0.5, e.Ratio(0), 0)
	assert.InDelta(t, 0.5, e.Ratio(1), 0)

	assert.False(t, e.ApplyStaged(&rc), "a request is applied once")
	assert.False(t, e.ApplyStaged(nil))
}

func TestRateControl_LatestWins(t *testing.T) {
	e := New[float32](1)
	var rc RateControl

	require.NoError(t, rc.Stage(24000, 48000))
	require.NoError(t, rc.Stage(48000, 24000))
	require.NoError(t, rc.Stage(44100, 48000))

	require.True(t, e.ApplyStaged(&rc))
	assert.InDelta(t, float64(float32(44100)/float32(48000)), e.RatioSnapshot(0), 0)
}

func TestRateControl_StageChannel(t *testing.T) {
	e := New[float32](2)
	var rc RateControl

	require.NoError(t, rc.StageChannel(1, 48000, 24000))
	require.True(t, e.ApplyStaged(&rc))
	assert.InDelta(t, 1.0, e.Ratio(0), 0)
	assert.InDelta(t, 2.0, e.Ratio(1), 0)

	// Valid for RateControl, but beyond this engine's channel count.
	require.NoError(t, rc.StageChannel(5, 48000, 24000))
	assert.False(t, e.ApplyStaged(&rc))
	assert.False(t, rc.Pending(), "an inapplicable request is still consumed")
}

func TestRateControl_ChannelRequestsAreIndependent(t *testing.T) {
	e := New[float32](3)
	var rc RateControl

	require.NoError(t, rc.StageChannel(0, 24000, 48000))
	require.NoError(t, rc.StageChannel(1, 48000, 24000))
	require.NoError(t, rc.StageChannel(1, 44100, 48000))

	require.True(t, e.ApplyStaged(&rc))
	assert.False(t, rc.Pending())
	assert.InDelta(t, 0.5, e.Ratio(0), 0)
	assert.InDelta(t, float64(float32(44100)/float32(48000)), e.Ratio(1), 0, "latest request for a channel wins")
	assert.InDelta(t, 1.0, e.Ratio(2), 0)
}

func TestRateControl_AllChannelOrdering(t *testing.T) {
	tests := []struct {
		name  string
		stage func(rc *RateControl) error
		want0 float64
		want1 float64
	}{
		{
			name: "channel after all overrides its channel",
			stage: func(rc *RateControl) error {
				if err := rc.Stage(24000, 48000); err != nil {
					return err
				}
				return rc.StageChannel(1, 48000, 24000)
			},
			want0: 0.5,
			want1: 2.0,
		},
		{
			name: "all after channel supersedes it",
			stage: func(rc *RateControl) error {
				if err := rc.StageChannel(1, 48000, 24000); err != nil {
					return err
				}
				return rc.Stage(24000, 48000)
			},
			want0: 0.5,
			want1: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New[float32](2)
			var rc RateControl
			require.NoError(t, tt.stage(&rc))

			require.True(t, e.ApplyStaged(&rc))
			assert.False(t, rc.Pending())
			assert.InDelta(t, tt.want0, e.Ratio(0), 0)
			assert.InDelta(t, tt.want1, e.Ratio(1), 0)
		})
	}
}

func TestRateControl_RejectsInvalid(t *testing.T) {
	var rc RateControl

	assert.ErrorIs(t, rc.Stage(0, 48000), ErrInvalidRate)
	assert.ErrorIs(t, rc.StageChannel(0, 48000, -1), ErrInvalidRate)
	assert.ErrorIs(t, rc.StageChannel(-1, 48000, 48000), ErrInvalidChannel)
	assert.ErrorIs(t, rc.StageChannel(MaxChannels, 48000, 48000), ErrInvalidChannel)
	assert.False(t, rc.Pending())
}

// TestRateControl_ConcurrentStaging stages rates from several goroutines
// while the processing goroutine keeps pulling samples and applying requests.
// Run with -race.
func TestRateControl_ConcurrentStaging(t *testing.T) {
	e := New[float32](1)
	var rc RateControl

	rates := [][2]float64{{24000, 48000}, {48000, 44100}, {44100, 48000}, {48000, 36000}}

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Go(func() {
			for i := range 500 {
				r := rates[(w+i)%len(rates)]
				assert.NoError(t, rc.Stage(r[0], r[1]))
			}
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	src := NewSliceSource(testutil.Sine[float32](1024, 440, 48000), true)
	out := make([]float32, 4096)
	pos := 0
	running := true
	for running {
		select {
		case <-done:
			running = false
		default:
		}
		e.ApplyStaged(&rc)
		for range 16 {
			out[pos] = e.Next(0, src)
			pos = (pos + 1) % len(out)
		}
	}
	e.ApplyStaged(&rc)

	testutil.AssertNoNaNOrInf(t, out)
	assert.False(t, rc.Pending())

	snap := e.RatioSnapshot(0)
	var matched bool
	for _, r := range rates {
		if snap == float64(float32(r[0])/float32(r[1])) {
			matched = true
		}
	}
	assert.True(t, matched, "final ratio %v is one of the staged ratios", snap)
}
