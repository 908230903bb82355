// Package engine implements the streaming Catmull-Rom resampling core.
//
// An Engine owns a fixed array of per-channel interpolation states and
// exposes two front-ends over one shared interpolation routine:
//
//   - Next, a lazy pull form that reads input from a Source only when the
//     phase accumulator crosses an input sample boundary.
//   - Process, a block form that consumes a prefix of an input slice and
//     fills a prefix of an output slice, reporting exact counts.
//
// Nothing on the processing path allocates, locks, logs or panics.
package engine

import (
	"errors"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Errors returned by the engine.
var (
	// ErrInvalidChannel indicates a channel index outside [0, Channels()).
	ErrInvalidChannel = errors.New("invalid channel index")

	// ErrInvalidRate indicates a non-positive, non-finite or out of range rate pair.
	ErrInvalidRate = errors.New("invalid sample rate")
)

// Engine converts up to MaxChannels independent streams between sample rates.
//
// Calls for one channel must be sequential. Different channels share no
// mutable state apart from the stride configuration, which is meant to be
// set up before processing starts. RatioSnapshot is the only method safe to
// call concurrently with processing.
type Engine[F simdops.Float] struct {
	channels  [MaxChannels]channelState[F]
	published [MaxChannels]atomic.Uint64 // float64 bits of each channel's ratio

	numChannels  int
	inputStride  int
	outputStride int
}

// New creates an engine for numChannels channels, clamped to [1, MaxChannels].
// Every channel starts at unity ratio and unprimed. Both strides default to
// the channel count, which matches an interleaved buffer layout.
func New[F simdops.Float](numChannels int) *Engine[F] {
	n := clampChannels(numChannels)

	e := &Engine[F]{
		numChannels:  n,
		inputStride:  n,
		outputStride: n,
	}
	for ch := range n {
		e.channels[ch].reset(1)
		e.publish(ch)
	}
	return e
}

func clampChannels(n int) int {
	return min(max(n, minChannels), MaxChannels)
}

func clampStride(n int) int {
	return min(max(n, minStride), maxStride)
}

// validRatio computes input/output in the engine's precision and checks it
// against the supported range.
func validRatio[F simdops.Float](inputRate, outputRate float64) (F, bool) {
	if !(inputRate > 0) || !(outputRate > 0) || math.IsInf(inputRate, 0) || math.IsInf(outputRate, 0) {
		return 0, false
	}
	ratio := F(inputRate) / F(outputRate)
	if !(ratio >= minRatio) || !(ratio <= maxRatio) {
		return 0, false
	}
	return ratio, true
}

// ValidateRates reports whether the rate pair would be accepted by SetRate.
func ValidateRates(inputRate, outputRate float64) error {
	if _, ok := validRatio[float64](inputRate, outputRate); !ok {
		return ErrInvalidRate
	}
	return nil
}

func (e *Engine[F]) valid(ch int) bool {
	return ch >= 0 && ch < e.numChannels
}

func (e *Engine[F]) publish(ch int) {
	e.published[ch].Store(math.Float64bits(float64(e.channels[ch].ratio)))
}

// setRatio changes a channel's ratio. History is discarded only when the
// value actually changes, so redundant calls cause no discontinuity.
func (e *Engine[F]) setRatio(ch int, ratio F) {
	c := &e.channels[ch]
	if c.ratio == ratio {
		return
	}
	c.ratio = ratio
	c.primed = false
	e.publish(ch)
}

// Channels returns the number of active channels.
func (e *Engine[F]) Channels() int {
	return e.numChannels
}

// SetRate sets the conversion ratio of every channel to inputRate/outputRate.
// Invalid rates leave all channels untouched and return false.
func (e *Engine[F]) SetRate(inputRate, outputRate float64) bool {
	ratio, ok := validRatio[F](inputRate, outputRate)
	if !ok {
		return false
	}
	for ch := range e.numChannels {
		e.setRatio(ch, ratio)
	}
	return true
}

// SetChannelRate sets the conversion ratio of a single channel.
// It returns false for an invalid channel or invalid rates.
func (e *Engine[F]) SetChannelRate(ch int, inputRate, outputRate float64) bool {
	if !e.valid(ch) {
		return false
	}
	ratio, ok := validRatio[F](inputRate, outputRate)
	if !ok {
		return false
	}
	e.setRatio(ch, ratio)
	return true
}

// Ratio returns the live ratio of a channel, or 0 for an invalid channel.
// Call it from the processing goroutine; other goroutines use RatioSnapshot.
func (e *Engine[F]) Ratio(ch int) F {
	if !e.valid(ch) {
		return 0
	}
	return e.channels[ch].ratio
}

// RatioSnapshot returns the last published ratio of a channel.
// Safe to call from any goroutine; returns 0 for an invalid channel.
func (e *Engine[F]) RatioSnapshot(ch int) float64 {
	if !e.valid(ch) {
		return 0
	}
	return math.Float64frombits(e.published[ch].Load())
}

// Primed reports whether a channel has valid interpolation history.
func (e *Engine[F]) Primed(ch int) bool {
	if !e.valid(ch) {
		return false
	}
	return e.channels[ch].primed
}

// SetInputStride sets the element distance between consecutive samples of
// one channel in block-form input. Values are clamped to [1, 65536].
// The stride is shared by all channels.
func (e *Engine[F]) SetInputStride(n int) {
	e.inputStride = clampStride(n)
}

// SetOutputStride sets the element distance between consecutive samples of
// one channel in block-form output. Values are clamped to [1, 65536].
// The stride is shared by all channels.
func (e *Engine[F]) SetOutputStride(n int) {
	e.outputStride = clampStride(n)
}

// InputStride returns the block-form input stride.
func (e *Engine[F]) InputStride() int {
	return e.inputStride
}

// OutputStride returns the block-form output stride.
func (e *Engine[F]) OutputStride() int {
	return e.outputStride
}

// Flush discards the history of every channel. The next output of each
// channel is preceded by priming.
func (e *Engine[F]) Flush() {
	for ch := range e.numChannels {
		e.channels[ch].primed = false
	}
}

// FlushChannel discards the history of one channel.
// It returns false for an invalid channel.
func (e *Engine[F]) FlushChannel(ch int) bool {
	if !e.valid(ch) {
		return false
	}
	e.channels[ch].primed = false
	return true
}

// Reset returns every channel to unity ratio and unprimed state.
// Strides are kept.
func (e *Engine[F]) Reset() {
	for ch := range e.numChannels {
		e.channels[ch].reset(1)
		e.publish(ch)
	}
}

// ApplyStaged applies the rate changes staged on rc, if any. Call it from
// the processing goroutine at the start of a tick. The all-channel request
// is applied first, then every channel request staged after it. It returns
// true when at least one request was applied.
func (e *Engine[F]) ApplyStaged(rc *RateControl) bool {
	if rc == nil {
		return false
	}
	var (
		applied bool
		after   uint64
	)
	if req := rc.takeAll(); req != nil {
		applied = e.SetRate(req.inputRate, req.outputRate)
		after = req.seq
	}
	for ch := range MaxChannels {
		req := rc.takeChannel(ch)
		if req == nil || req.seq < after {
			continue
		}
		if e.SetChannelRate(ch, req.inputRate, req.outputRate) {
			applied = true
		}
	}
	return applied
}

// MemoryUsage returns the size of the per-channel state in bytes: the
// channel states for type F and the published ratios.
func (e *Engine[F]) MemoryUsage() int64 {
	return int64(unsafe.Sizeof(e.channels) + unsafe.Sizeof(e.published))
}

// FilterLength returns the number of input points each output depends on.
func (e *Engine[F]) FilterLength() int {
	return cubicInterpolationPoints
}

// Lookahead returns how many input samples past x0 must be read before an
// output at x0 can be produced.
func (e *Engine[F]) Lookahead() int {
	return primeSamples - 1
}
