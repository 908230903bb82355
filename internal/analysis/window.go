package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Kaiser window defaults for spur measurement.
const (
	// SpurBeta gives sidelobes near -90 dB, below cubic interpolation's
	// image level for audio-band tones.
	SpurBeta = 12.0

	// Bins either side of a peak treated as its main lobe.
	spurGuardBins = 8

	// |x| below which the power series of I0 is used.
	besselSeriesLimit = 3.75

	// Amplitude ratio to decibels.
	amplitudeToDB = 20.0
)

// Polynomial coefficients for I0 (Abramowitz & Stegun 9.8.1 and 9.8.2).
var (
	besselSeries = [...]float64{1.0, 3.5156229, 3.0899424, 1.2067492, 0.2659732, 0.0360768, 0.0045813}
	besselAsymp  = [...]float64{
		0.39894228, 0.01328592, 0.00225319, -0.00157565, 0.00916281,
		-0.02057706, 0.02635537, -0.01647633, 0.00392377,
	}
)

// BesselI0 returns the modified Bessel function of the first kind, order
// zero. Relative error is below 2e-7.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < besselSeriesLimit {
		t := x / besselSeriesLimit
		return horner(besselSeries[:], t*t)
	}
	return math.Exp(ax) / math.Sqrt(ax) * horner(besselAsymp[:], besselSeriesLimit/ax)
}

// horner evaluates c[0] + c[1]*t + c[2]*t^2 + ...
func horner(c []float64, t float64) float64 {
	var y float64
	for i := len(c) - 1; i >= 0; i-- {
		y = y*t + c[i]
	}
	return y
}

// KaiserWindow returns a symmetric Kaiser window of n points with peak 1.
func KaiserWindow(n int, beta float64) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	half := float64(n-1) / 2
	norm := BesselI0(beta)
	for i := range w {
		x := (float64(i) - half) / half
		w[i] = BesselI0(beta*math.Sqrt(math.Max(0, 1-x*x))) / norm
	}
	return w
}

// WindowedSpectrum returns the single-sided magnitude spectrum of x after
// a Kaiser window, scaled by the window's coherent gain so a unit sine
// reads close to 1.0 whether or not it lands on a bin.
func WindowedSpectrum(x []float64, beta float64) ([]float64, error) {
	n := len(x)
	if n < minSamples {
		return nil, ErrTooShort
	}

	w := KaiserWindow(n, beta)
	gain := floats.Sum(w)
	floats.Mul(w, x)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, w)

	mags := make([]float64, len(coeffs))
	for k, c := range coeffs {
		mags[k] = cmplx.Abs(c) * singleSided / gain
	}
	mags[0] /= singleSided
	return mags, nil
}

// SpurLevel returns the strongest component of x outside the main lobes of
// DC and of the largest peak, in dB relative to that peak. The tone need
// not be bin-centred.
func SpurLevel(x []float64) (float64, error) {
	mags, err := WindowedSpectrum(x, SpurBeta)
	if err != nil {
		return 0, err
	}
	if len(mags) <= 2*(spurGuardBins+1) {
		return 0, ErrTooShort
	}

	peak := spurGuardBins + 1 + floats.MaxIdx(mags[spurGuardBins+1:])
	var spur float64
	for k := spurGuardBins + 1; k < len(mags); k++ {
		if k >= peak-spurGuardBins && k <= peak+spurGuardBins {
			continue
		}
		spur = math.Max(spur, mags[k])
	}
	return amplitudeToDB * math.Log10(math.Max(spur, noiseFloor)/mags[peak]), nil
}
