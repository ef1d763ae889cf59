package signal

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// THD returns sqrt(sum(h[1:]^2)) / h[0]. A zero or missing fundamental yields 0.
func THD(harmonics []float64) float64 {
	if len(harmonics) == 0 || harmonics[0] == 0 {
		return 0
	}
	var sum float64
	for _, h := range harmonics[1:] {
		sum += h * h
	}
	return math.Sqrt(sum) / harmonics[0]
}

// SpectrumHarmonics returns the FFT magnitudes at the bins nearest to k*lineFrequency
// for k = 1, 2, ... below Nyquist. Index 0 is the fundamental.
func SpectrumHarmonics(waveform []float64, sampleRate, lineFrequency float64) []float64 {
	n := len(waveform)
	if n < 2 || !(sampleRate > 0) || !(lineFrequency > 0) {
		return nil
	}
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, waveform)

	nyquist := sampleRate / 2
	resolution := sampleRate / float64(n)
	var out []float64
	for k := 1; float64(k)*lineFrequency < nyquist; k++ {
		bin := int(math.Round(float64(k) * lineFrequency / resolution))
		if bin <= 0 || bin >= len(coeffs) {
			break
		}
		out = append(out, cmplx.Abs(coeffs[bin]))
	}
	return out
}

// WaveformTHD is THD applied to SpectrumHarmonics.
func WaveformTHD(waveform []float64, sampleRate, lineFrequency float64) float64 {
	return THD(SpectrumHarmonics(waveform, sampleRate, lineFrequency))
}
