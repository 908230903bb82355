// Package analysis measures resampler output quality in the frequency domain.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Errors returned by the analysis functions.
var (
	// ErrTooShort indicates a signal too short to analyse.
	ErrTooShort = errors.New("signal too short")

	// ErrNotCoherent indicates a tone that does not land on an FFT bin.
	ErrNotCoherent = errors.New("tone frequency is not bin-centred")
)

const (
	// Minimum number of samples for a meaningful spectrum.
	minSamples = 16

	// Relative tolerance when checking that a tone lands on a bin.
	binTolerance = 1e-9

	// Power ratio to decibels.
	powerToDB = 10.0

	// Floor for noise power to keep results finite for ideal signals.
	noiseFloor = 1e-30

	// Single-sided spectrum scale for bins other than DC and Nyquist.
	singleSided = 2.0
)

// Spectrum returns the single-sided magnitude spectrum of x (len(x)/2 + 1
// bins), normalised so a unit sine on a bin reads 1.0.
func Spectrum(x []float64) ([]float64, error) {
	n := len(x)
	if n < minSamples {
		return nil, ErrTooShort
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, x)

	mags := make([]float64, len(coeffs))
	for k, c := range coeffs {
		mags[k] = cmplx.Abs(c) * singleSided / float64(n)
	}
	mags[0] /= singleSided
	return mags, nil
}

// ToneBin returns the FFT bin of freq for an n-point transform at rate Hz.
// It fails with ErrNotCoherent when freq is not an exact bin centre, since
// spectral leakage would then be counted as noise.
func ToneBin(n int, freq, rate float64) (int, error) {
	if n < minSamples {
		return 0, ErrTooShort
	}
	exact := freq * float64(n) / rate
	bin := math.Round(exact)
	if math.Abs(exact-bin) > binTolerance*math.Max(1, exact) || bin <= 0 || bin >= float64(n)/2 {
		return 0, fmt.Errorf("%w: %.6f Hz at %d points, %.0f Hz", ErrNotCoherent, freq, n, rate)
	}
	return int(bin), nil
}

// ToneSNR returns the ratio in dB between the power of the tone at bin and
// the power of everything else except DC. The tone must be bin-centred.
func ToneSNR(x []float64, bin int) (float64, error) {
	n := len(x)
	if n < minSamples {
		return 0, ErrTooShort
	}
	if bin <= 0 || bin >= n/2 {
		return 0, fmt.Errorf("%w: bin %d out of range", ErrNotCoherent, bin)
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, x)

	// Parseval: sum(x^2) = (|X0|^2 + 2*sum(|Xk|^2) + |XN/2|^2) / N
	total := floats.Dot(x, x)
	dc := sq(cmplx.Abs(coeffs[0])) / float64(n)
	tone := singleSided * sq(cmplx.Abs(coeffs[bin])) / float64(n)

	noise := math.Max(total-tone-dc, noiseFloor)
	return powerToDB * math.Log10(tone/noise), nil
}

// Sine returns n samples of amplitude*sin(2*pi*freq*t) sampled at rate Hz.
func Sine(n int, freq, rate, amplitude float64) []float64 {
	x := make([]float64, n)
	omega := 2 * math.Pi * freq / rate
	for i := range x {
		x[i] = amplitude * math.Sin(omega*float64(i))
	}
	return x
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
}

// Peak returns the largest absolute value in x.
func Peak(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Max(floats.Max(x), -floats.Min(x))
}

func sq(v float64) float64 {
	return v * v
}
