package main

import (
	"fmt"
	"math"
	"time"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Report summarises one conversion run.
type Report struct {
	Mode           string  `json:"mode"`
	InputRate      float64 `json:"input_rate"`
	OutputRate     float64 `json:"output_rate"`
	Ratio          float64 `json:"ratio"`
	Channels       int     `json:"channels"`
	Algorithm      string  `json:"algorithm"`
	FilterLength   int     `json:"filter_length"`
	Latency        int     `json:"latency"`
	MemoryBytes    int64   `json:"memory_bytes"`
	SIMD           string  `json:"simd"`
	InputFrames    int     `json:"input_frames"`
	OutputFrames   int     `json:"output_frames"`
	ExpectedFrames int     `json:"expected_frames"`
	OutputRMS      float64 `json:"output_rms"`
	OutputMean     float64 `json:"output_mean"`
	ElapsedMicros  int64   `json:"elapsed_us"`
	Realtime       float64 `json:"realtime_factor"`
}

// generateTestSignal returns a sine tone for one channel.
func generateTestSignal(samples int, sampleRate float64) []float32 {
	signal := make([]float32, samples)
	omega := 2 * math.Pi * testSignalFrequency / sampleRate
	for i := range signal {
		signal[i] = float32(testSignalAmplitude * math.Sin(omega*float64(i)))
	}
	return signal
}

// runConversion converts a generated tone on every channel with the
// selected front-end and returns channel 0's output with a report.
func runConversion(mode string, inputRate, outputRate float64, channels, block int) ([]float32, *Report, error) {
	frames := int(inputRate * testSignalSeconds)
	signal := generateTestSignal(frames, inputRate)

	var (
		out  []float32
		info resampler.Info
	)
	start := time.Now()

	switch mode {
	case modePull:
		r, err := resampler.New(&resampler.Config{InputRate: inputRate, OutputRate: outputRate, Channels: channels})
		if err != nil {
			return nil, nil, err
		}
		info = resampler.GetInfo(r)
		out = convertPull(r, signal, resampler.OutputLength(frames, inputRate, outputRate))

	case modeBlock:
		r, err := resampler.New(&resampler.Config{InputRate: inputRate, OutputRate: outputRate, Channels: channels})
		if err != nil {
			return nil, nil, err
		}
		info = resampler.GetInfo(r)
		out = convertBlock(r, signal, block)

	case modeRing:
		if err := (&resampler.Config{InputRate: inputRate, OutputRate: outputRate, Channels: channels}).Validate(); err != nil {
			return nil, nil, err
		}
		rb := resampler.NewRingBuffer(channels, block, outputRate/inputRate)
		rb.SetRate(inputRate, outputRate)
		info = resampler.GetInfo(rb.Engine())
		out = convertRing(rb, signal, block)

	default:
		return nil, nil, fmt.Errorf("unknown mode %q (want %s, %s or %s)", mode, modePull, modeBlock, modeRing)
	}

	elapsed := time.Since(start)
	report := &Report{
		Mode:           mode,
		InputRate:      inputRate,
		OutputRate:     outputRate,
		Ratio:          inputRate / outputRate,
		Channels:       info.Channels,
		Algorithm:      info.Algorithm,
		FilterLength:   info.FilterLength,
		Latency:        info.Latency,
		MemoryBytes:    info.MemoryUsage,
		SIMD:           info.SIMDType,
		InputFrames:    frames,
		OutputFrames:   len(out),
		ExpectedFrames: resampler.OutputLength(frames, inputRate, outputRate),
		OutputRMS:      simdops.RMS(out),
		OutputMean:     simdops.Mean(out),
		ElapsedMicros:  elapsed.Microseconds(),
	}
	if elapsed > 0 {
		report.Realtime = testSignalSeconds / elapsed.Seconds()
	}
	return out, report, nil
}

// convertPull drives every channel from its own slice source.
func convertPull(r *resampler.Resampler, signal []float32, n int) []float32 {
	channels := r.Channels()
	sources := make([]*resampler.SliceSource, channels)
	for ch := range sources {
		sources[ch] = resampler.NewSliceSource(signal, false)
	}

	out := make([]float32, n)
	for i := range out {
		out[i] = r.Next(0, sources[0])
		for ch := 1; ch < channels; ch++ {
			r.Next(ch, sources[ch])
		}
	}
	return out
}

// convertBlock feeds interleaved blocks and carries unconsumed input over.
func convertBlock(r *resampler.Resampler, signal []float32, block int) []float32 {
	channels := r.Channels()
	interleaved := make([]float32, len(signal)*channels)
	for i, s := range signal {
		for ch := range channels {
			interleaved[i*channels+ch] = s
		}
	}

	block = max(block, minBlockFrames) * channels
	outBuf := make([]float32, int(math.Ceil(float64(block)/float64(r.Ratio(0))))+2*channels)
	var out []float32

	for len(interleaved) > 0 {
		chunk := interleaved[:min(block, len(interleaved))]
		var consumed, produced int
		for ch := range channels {
			consumed, produced, _ = r.Process(ch, resampler.ChannelView(chunk, ch), resampler.ChannelView(outBuf, ch))
		}
		frames := (produced + channels - 1) / channels
		for i := range frames {
			out = append(out, outBuf[i*channels])
		}
		// Round up to whole frames: views past channel 0 are shorter than the chunk.
		used := (consumed + channels - 1) / channels * channels
		if used == 0 {
			break
		}
		interleaved = interleaved[used:]
	}
	return out
}

// convertRing pushes producer blocks and drains whatever is available.
func convertRing(rb *resampler.RingBuffer, signal []float32, block int) []float32 {
	block = max(block, 1)
	var out []float32
	for off := 0; off < len(signal); off += block {
		end := min(off+block, len(signal))
		for ch := range rb.Channels() {
			rb.Push(ch, signal[off:end])
		}
		for rb.Available(0) > 0 {
			out = append(out, rb.Pop(0))
			for ch := 1; ch < rb.Channels(); ch++ {
				rb.Pop(ch)
			}
		}
	}
	return out
}
