// Package resampler provides streaming audio sample-rate conversion in pure Go.
//
// Conversion uses four-point Catmull-Rom cubic interpolation with a
// fractional phase accumulator per channel. The converter keeps only four
// samples of history per channel, never allocates while processing and can
// change its ratio on the fly, which makes it suitable for real-time audio
// callbacks, drift compensation and pitch effects.
//
// # Features
//
//   - Up to 16 independent channels per [Resampler]
//   - Ratios from 1/256 to 256 (input rate / output rate), changeable at runtime
//   - Pull form ([Resampler.Next]) that reads input lazily from a [Source]
//   - Block form ([Resampler.Process]) over interleaved or strided buffers
//   - [RingBuffer] for decoupling producer and consumer block sizes
//   - Lock-free rate handoff between goroutines via [RateControl]
//   - float32 ([Resampler]) and float64 ([Resampler64]) precision
//
// # Quick Start
//
// For simple one-shot resampling:
//
//	output, err := resampler.ResampleMono(input, 44100, 48000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming interleaved stereo with the block form:
//
//	r, err := resampler.NewStereo(44100, 48000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range audioChunks {
//	    for ch := range 2 {
//	        consumed, produced, _ := r.Process(ch, chunk[ch:], out[ch:])
//	        ...
//	    }
//	}
//
// The block form consumes a prefix of the input and fills a prefix of the
// output. Unconsumed input must be passed again at the start of the next
// call. Counts are buffer elements, so with an interleaved layout consumed
// and produced advance by the frame width.
//
// For the pull form, hand the resampler anything with a Next() float32
// method, for example a [SliceSource] or a [SourceFunc]:
//
//	r := resampler.NewResampler(1)
//	r.SetRate(24000, 48000)
//	src := resampler.NewSliceSource(samples, false)
//	for i := range out {
//	    out[i] = r.Next(0, src)
//	}
//
// # Rate Changes
//
// [Resampler.SetRate] takes effect immediately. A channel's history is only
// discarded when its ratio actually changes; setting the same ratio again is
// a no-op. To change the rate from a control goroutine, stage the request on
// a [RateControl] and call ApplyStaged from the processing goroutine at the
// start of each tick.
//
// # Thread Safety
//
// Calls for one channel must be sequential. Different channels may be
// processed on different goroutines, see [Resampler.ProcessPlanar]. Strides
// are shared by all channels and should be configured before processing
// starts. RatioSnapshot may be read from any goroutine.
package resampler
