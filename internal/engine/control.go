package engine

import (
	"sync/atomic"
)

// rateRequest is an immutable staged rate change.
type rateRequest struct {
	seq        uint64
	inputRate  float64
	outputRate float64
}

// RateControl hands rate changes from a control goroutine (a UI knob, a
// transport) to the processing goroutine without locks.
//
// Stage may be called from any goroutine. The processing goroutine picks
// requests up with Engine.ApplyStaged at a point of its choosing, so the
// ratio never changes in the middle of a block. Each channel has its own
// slot and so does the all-channel request: requests for different
// channels never replace each other, while repeated requests for the same
// target keep only the latest. A channel request staged before an
// all-channel request is superseded by it.
type RateControl struct {
	seq      atomic.Uint64
	all      atomic.Pointer[rateRequest]
	channels [MaxChannels]atomic.Pointer[rateRequest]
}

// Stage queues a rate change for every channel.
func (rc *RateControl) Stage(inputRate, outputRate float64) error {
	req, err := rc.request(inputRate, outputRate)
	if err != nil {
		return err
	}
	rc.all.Store(req)
	return nil
}

// StageChannel queues a rate change for one channel. The channel index is
// checked against the engine when the request is applied.
func (rc *RateControl) StageChannel(ch int, inputRate, outputRate float64) error {
	if ch < 0 || ch >= MaxChannels {
		return ErrInvalidChannel
	}
	req, err := rc.request(inputRate, outputRate)
	if err != nil {
		return err
	}
	rc.channels[ch].Store(req)
	return nil
}

func (rc *RateControl) request(inputRate, outputRate float64) (*rateRequest, error) {
	if err := ValidateRates(inputRate, outputRate); err != nil {
		return nil, err
	}
	return &rateRequest{
		seq:        rc.seq.Add(1),
		inputRate:  inputRate,
		outputRate: outputRate,
	}, nil
}

// Pending reports whether a staged request is waiting to be applied.
func (rc *RateControl) Pending() bool {
	if rc.all.Load() != nil {
		return true
	}
	for ch := range rc.channels {
		if rc.channels[ch].Load() != nil {
			return true
		}
	}
	return false
}

// takeAll removes and returns the staged all-channel request, or nil.
func (rc *RateControl) takeAll() *rateRequest {
	if rc == nil {
		return nil
	}
	return rc.all.Swap(nil)
}

// takeChannel removes and returns the staged request of ch, or nil.
func (rc *RateControl) takeChannel(ch int) *rateRequest {
	if rc == nil {
		return nil
	}
	return rc.channels[ch].Swap(nil)
}
