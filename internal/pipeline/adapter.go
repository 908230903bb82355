package pipeline

import (
	"math"

	"github.com/tphakala/go-stream-resampler/internal/engine"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// RingAdapter decouples producer and consumer block sizes. Push runs the
// block form once over a producer block and stages the result in a
// per-channel ring; Pop drains the ring one sample at a time.
//
// The interpolation is done entirely by the wrapped engine, so popped
// values are identical to calling the block form directly on the
// concatenated producer blocks. All storage is allocated by NewRingAdapter.
type RingAdapter[F simdops.Float] struct {
	core    *engine.Engine[F]
	rings   [engine.MaxChannels]*Ring[F]
	scratch [engine.MaxChannels][]F

	// Samples pushed into an unprimed channel too short to prime it.
	carry    [engine.MaxChannels][primeWindow]F
	carryLen [engine.MaxChannels]int
}

// NewRingAdapter creates an adapter for channels planar (non-interleaved)
// streams. Each ring holds maxBlockSize*maxUpsample samples plus a small
// headroom, where maxUpsample is the largest output/input rate ratio the
// adapter will be used with.
func NewRingAdapter[F simdops.Float](channels, maxBlockSize int, maxUpsample float64) *RingAdapter[F] {
	core := engine.New[F](channels)
	core.SetInputStride(planarStride)
	core.SetOutputStride(planarStride)

	maxBlockSize = max(maxBlockSize, minBlockSize)
	if !(maxUpsample >= minUpsample) || math.IsInf(maxUpsample, 0) {
		maxUpsample = defaultUpRatio
	}
	capacity := int(math.Ceil(float64(maxBlockSize)*maxUpsample)) + ringHeadroom

	a := &RingAdapter[F]{core: core}
	for ch := range core.Channels() {
		a.rings[ch] = NewRing[F](capacity)
		a.scratch[ch] = make([]F, capacity)
	}
	return a
}

// Engine exposes the wrapped engine for rate and flush control.
func (a *RingAdapter[F]) Engine() *engine.Engine[F] {
	return a.core
}

// Channels returns the number of channels.
func (a *RingAdapter[F]) Channels() int {
	return a.core.Channels()
}

// SetRate sets the conversion ratio of every channel.
func (a *RingAdapter[F]) SetRate(inputRate, outputRate float64) bool {
	return a.core.SetRate(inputRate, outputRate)
}

// Push resamples block for channel ch and appends the result to the ring,
// overwriting the oldest unread samples if the ring overflows. It returns
// the number of samples produced, or 0 for an invalid channel.
func (a *RingAdapter[F]) Push(ch int, block []F) int {
	if ch < 0 || ch >= a.core.Channels() {
		return 0
	}

	total := 0
	if n := a.carryLen[ch]; n > 0 {
		take := min(primeWindow-n, len(block))
		copy(a.carry[ch][n:], block[:take])
		a.carryLen[ch] += take
		block = block[take:]
		if a.carryLen[ch] < primeWindow {
			return 0
		}
		a.carryLen[ch] = 0
		total += a.run(ch, a.carry[ch][:])
	}
	return total + a.run(ch, block)
}

// run feeds block through the engine until it is used up, staging output.
func (a *RingAdapter[F]) run(ch int, block []F) int {
	scratch := a.scratch[ch]
	ring := a.rings[ch]

	total := 0
	for len(block) > 0 {
		consumed, produced, err := a.core.Process(ch, block, scratch)
		if err != nil {
			break
		}
		if consumed == 0 && produced == 0 {
			// Too short to prime; keep it for the next push.
			a.carryLen[ch] = copy(a.carry[ch][:], block)
			break
		}
		ring.Write(scratch[:produced])
		total += produced
		block = block[consumed:]
	}
	return total
}

// Pop removes and returns the oldest staged sample of channel ch.
// It returns 0 when nothing is staged or the channel is invalid.
func (a *RingAdapter[F]) Pop(ch int) F {
	if ch < 0 || ch >= a.core.Channels() {
		return 0
	}
	sample, _ := a.rings[ch].ReadOne()
	return sample
}

// PopInto drains up to len(dst) staged samples of channel ch into dst.
func (a *RingAdapter[F]) PopInto(ch int, dst []F) int {
	if ch < 0 || ch >= a.core.Channels() {
		return 0
	}
	return a.rings[ch].Read(dst)
}

// Available returns the number of staged samples of channel ch.
func (a *RingAdapter[F]) Available(ch int) int {
	if ch < 0 || ch >= a.core.Channels() {
		return 0
	}
	return a.rings[ch].Available()
}

// Dropped returns how many staged samples of channel ch were overwritten.
func (a *RingAdapter[F]) Dropped(ch int) int64 {
	if ch < 0 || ch >= a.core.Channels() {
		return 0
	}
	return a.rings[ch].Dropped()
}

// Capacity returns the per-channel ring capacity.
func (a *RingAdapter[F]) Capacity() int {
	return a.rings[0].Capacity()
}

// Flush discards interpolation history and staged samples of every channel.
func (a *RingAdapter[F]) Flush() {
	a.core.Flush()
	a.clear()
}

// Reset returns the adapter to its construction state.
func (a *RingAdapter[F]) Reset() {
	a.core.Reset()
	a.clear()
}

func (a *RingAdapter[F]) clear() {
	for ch := range a.core.Channels() {
		a.rings[ch].Clear()
		a.carryLen[ch] = 0
	}
}
