package resampler

import (
	"github.com/tphakala/go-stream-resampler/internal/pipeline"
)

// RingBuffer decouples a producer's block size from a consumer's. Push
// converts a planar block and stages the result per channel; Pop and
// PopInto drain it at whatever granularity the consumer needs.
//
// Push and Pop for one channel must run on the same goroutine. When a ring
// is full the oldest samples are overwritten and counted by Dropped.
type RingBuffer struct {
	*pipeline.RingAdapter[float32]
}

// NewRingBuffer creates a ring buffer for channels planar streams.
// maxBlock is the largest block passed to Push and maxUpsample the largest
// output/input rate ratio it will run at; together they size the rings.
func NewRingBuffer(channels, maxBlock int, maxUpsample float64) *RingBuffer {
	return &RingBuffer{RingAdapter: pipeline.NewRingAdapter[float32](channels, maxBlock, maxUpsample)}
}

// SetRateFromControl applies the rate changes staged on rc, if any.
func (b *RingBuffer) SetRateFromControl(rc *RateControl) bool {
	return b.Engine().ApplyStaged(rc)
}
