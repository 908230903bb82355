package resampler

import (
	"fmt"
	"math"

	"github.com/tphakala/go-stream-resampler/internal/engine"
	"github.com/tphakala/go-stream-resampler/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is the speech recognition common sample rate.
	RateSpeech = 22050
)

// NewMono creates a single-channel float32 resampler.
func NewMono(inputRate, outputRate float64) (*Resampler, error) {
	return New(&Config{
		InputRate:  inputRate,
		OutputRate: outputRate,
		Channels:   monoChannels,
	})
}

// NewStereo creates a float32 resampler for interleaved stereo buffers.
func NewStereo(inputRate, outputRate float64) (*Resampler, error) {
	return New(&Config{
		InputRate:  inputRate,
		OutputRate: outputRate,
		Channels:   stereoChannels,
	})
}

// NewCDtoDAT creates a mono resampler for CD (44.1kHz) to DAT (48kHz) conversion.
func NewCDtoDAT() (*Resampler, error) {
	return NewMono(RateCD, RateDAT)
}

// NewDATtoCD creates a mono resampler for DAT (48kHz) to CD (44.1kHz) conversion.
func NewDATtoCD() (*Resampler, error) {
	return NewMono(RateDAT, RateCD)
}

// OutputLength returns how many output samples a complete conversion of
// inputLen samples yields: one per output instant that falls inside the
// input, ceil(inputLen * outputRate / inputRate).
func OutputLength(inputLen int, inputRate, outputRate float64) int {
	if inputLen <= 0 || !(inputRate > 0) || !(outputRate > 0) {
		return 0
	}
	return int(math.Ceil(float64(inputLen)*outputRate/inputRate - lengthEpsilon))
}

// ResampleMono is a convenience function for one-shot mono resampling.
// The tail is completed by reading silence past the end of input.
func ResampleMono(input []float64, inputRate, outputRate float64) ([]float64, error) {
	return resampleOneShot(input, inputRate, outputRate)
}

// ResampleMonoFloat32 is the float32 equivalent of ResampleMono.
func ResampleMonoFloat32(input []float32, inputRate, outputRate float64) ([]float32, error) {
	return resampleOneShot(input, inputRate, outputRate)
}

// ResampleStereo is a convenience function for one-shot stereo resampling.
// Input is expected as separate left and right channels.
func ResampleStereo(left, right []float64, inputRate, outputRate float64) (leftOut, rightOut []float64, err error) {
	// Process left channel
	leftOut, err = resampleOneShot(left, inputRate, outputRate)
	if err != nil {
		return nil, nil, err
	}

	// Process right channel
	rightOut, err = resampleOneShot(right, inputRate, outputRate)
	if err != nil {
		return nil, nil, err
	}

	return leftOut, rightOut, nil
}

// ResampleStereoFloat32 is the float32 equivalent of ResampleStereo.
func ResampleStereoFloat32(left, right []float32, inputRate, outputRate float64) (leftOut, rightOut []float32, err error) {
	leftOut, err = resampleOneShot(left, inputRate, outputRate)
	if err != nil {
		return nil, nil, err
	}
	rightOut, err = resampleOneShot(right, inputRate, outputRate)
	if err != nil {
		return nil, nil, err
	}
	return leftOut, rightOut, nil
}

func resampleOneShot[F simdops.Float](input []F, inputRate, outputRate float64) ([]F, error) {
	if err := engine.ValidateRates(inputRate, outputRate); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := engine.New[F](monoChannels)
	e.SetRate(inputRate, outputRate)

	src := engine.NewSliceSource(input, false)
	output := make([]F, OutputLength(len(input), inputRate, outputRate))
	for i := range output {
		output[i] = e.Next(0, src)
	}
	return output, nil
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo(left, right []float64) []float64 {
	result := make([]float64, min(len(left), len(right))*stereoChannels)
	simdops.Interleave(result, left, right)
	return result
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveFromStereo(interleaved []float64) (left, right []float64) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]float64, numSamples)
	right = make([]float64, numSamples)
	simdops.Deinterleave(interleaved, left, right)
	return left, right
}

// InterleaveToStereoFloat32 converts two mono float32 channels to interleaved stereo.
func InterleaveToStereoFloat32(left, right []float32) []float32 {
	result := make([]float32, min(len(left), len(right))*stereoChannels)
	simdops.Interleave(result, left, right)
	return result
}

// DeinterleaveFromStereoFloat32 converts interleaved stereo float32 to two mono channels.
func DeinterleaveFromStereoFloat32(interleaved []float32) (left, right []float32) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]float32, numSamples)
	right = make([]float32, numSamples)
	simdops.Deinterleave(interleaved, left, right)
	return left, right
}

// ChannelView returns the view of an interleaved buffer that starts at
// channel ch. Pass it to Process together with a stride equal to the
// frame width. It returns nil when ch is outside the buffer.
func ChannelView[F float32 | float64](buf []F, ch int) []F {
	if ch < 0 || ch >= len(buf) {
		return nil
	}
	return buf[ch:]
}
