package main

import (
	"errors"
	"fmt"
	"math"

	resampler "github.com/tphakala/go-stream-resampler"
	"github.com/tphakala/go-stream-resampler/internal/analysis"
)

// errToneTooHigh indicates a tone at or above either Nyquist frequency.
var errToneTooHigh = errors.New("tone above Nyquist")

// Measurement is the quality of one tone through one conversion.
type Measurement struct {
	InputRate  float64 `json:"input_rate"`
	OutputRate float64 `json:"output_rate"`
	ToneHz     float64 `json:"tone_hz"`
	SNR        float64 `json:"snr_db"`
	SpurDB     float64 `json:"spur_db"`
	GainDB     float64 `json:"gain_db"`
	Peak       float64 `json:"peak"`
}

// measureTone converts a sine with the float64 pull form, skips the
// priming transient and measures a coherent window of the output.
func measureTone(inputRate, outputRate, toneHz float64) (*Measurement, error) {
	if toneHz >= min(inputRate, outputRate)/2 {
		return nil, fmt.Errorf("%w: %g Hz at %g -> %g Hz", errToneTooHigh, toneHz, inputRate, outputRate)
	}

	n := int(outputRate * windowSeconds)
	bin, err := analysis.ToneBin(n, toneHz, outputRate)
	if err != nil {
		return nil, err
	}

	r := resampler.NewResampler64(1)
	if !r.SetRate(inputRate, outputRate) {
		return nil, fmt.Errorf("%w: %g -> %g Hz", resampler.ErrInvalidRate, inputRate, outputRate)
	}

	inLen := int(inputRate/outputRate*float64(n+settleSamples)) + inputMargin
	src := resampler.NewSliceSource64(analysis.Sine(inLen, toneHz, inputRate, toneAmplitude), false)
	for range settleSamples {
		r.Next(0, src)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Next(0, src)
	}

	snr, err := analysis.ToneSNR(out, bin)
	if err != nil {
		return nil, err
	}
	spur, err := analysis.SpurLevel(out)
	if err != nil {
		return nil, err
	}
	mags, err := analysis.Spectrum(out)
	if err != nil {
		return nil, err
	}

	return &Measurement{
		InputRate:  inputRate,
		OutputRate: outputRate,
		ToneHz:     toneHz,
		SNR:        snr,
		SpurDB:     spur,
		GainDB:     20 * math.Log10(mags[bin]/toneAmplitude),
		Peak:       analysis.Peak(out),
	}, nil
}

// sweep measures every tone that fits both rates of every pair.
func sweep(pairs [][2]float64, tones []float64) []Measurement {
	var results []Measurement
	for _, p := range pairs {
		for _, tone := range tones {
			m, err := measureTone(p[0], p[1], tone)
			if err != nil {
				continue
			}
			results = append(results, *m)
		}
	}
	return results
}
