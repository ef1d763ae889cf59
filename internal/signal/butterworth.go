package signal

import (
	"fmt"
	"math"
	"math/cmplx"
)

// FilterKind selects the pass band of a Butterworth stage.
type FilterKind string

const (
	LowPass  FilterKind = "lowpass"
	HighPass FilterKind = "highpass"
)

// Valid returns true when kind is supported.
func (k FilterKind) Valid() bool {
	switch k {
	case LowPass, HighPass:
		return true
	default:
		return false
	}
}

// Butterworth holds the transfer-function coefficients of a digital Butterworth stage.
// A[0] is always 1.
type Butterworth struct {
	Kind       FilterKind
	Order      int
	Cutoff     float64
	SampleRate float64
	B          []float64
	A          []float64
}

// DesignButterworth builds a digital Butterworth filter by the bilinear transform of the
// analog prototype, with the cutoff pre-warped so it lands exactly at cutoff Hz.
func DesignButterworth(kind FilterKind, order int, cutoff, sampleRate float64) (Butterworth, error) {
	if err := ValidateStage(kind, order, cutoff, sampleRate); err != nil {
		return Butterworth{}, err
	}

	// Analog prototype: poles on the left half of the unit circle, no zeros, unity gain.
	poles := make([]complex128, order)
	for i := 0; i < order; i++ {
		m := float64(-order + 1 + 2*i)
		poles[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order)))
	}
	var zeros []complex128
	gain := 1.0

	// Work in the normalized domain where Nyquist is 1 and the bilinear rate is 2.
	const fs = 2.0
	wn := cutoff / (sampleRate / 2)
	warped := 2 * fs * math.Tan(math.Pi*wn/fs)

	switch kind {
	case LowPass:
		zeros, poles, gain = lowpassToLowpass(zeros, poles, gain, warped)
	case HighPass:
		zeros, poles, gain = lowpassToHighpass(zeros, poles, gain, warped)
	}
	zeros, poles, gain = bilinear(zeros, poles, gain, fs)

	b := realPoly(zeros)
	for i := range b {
		b[i] *= gain
	}
	a := realPoly(poles)

	return Butterworth{
		Kind:       kind,
		Order:      order,
		Cutoff:     cutoff,
		SampleRate: sampleRate,
		B:          b,
		A:          a,
	}, nil
}

// ValidateStage checks that a stage can be designed.
func ValidateStage(kind FilterKind, order int, cutoff, sampleRate float64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidFilterConfig, kind)
	}
	if order < 1 {
		return fmt.Errorf("%w: order %d", ErrInvalidFilterConfig, order)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidFilterConfig, sampleRate)
	}
	nyquist := sampleRate / 2
	if !(cutoff > 0) || cutoff >= nyquist {
		return fmt.Errorf("%w: cutoff %v outside (0, %v)", ErrInvalidFilterConfig, cutoff, nyquist)
	}
	return nil
}

// PadLen is the odd-extension length used by FiltFilt.
func (f Butterworth) PadLen() int {
	n := len(f.A)
	if len(f.B) > n {
		n = len(f.B)
	}
	return 3 * n
}

func lowpassToLowpass(z, p []complex128, k, wo float64) ([]complex128, []complex128, float64) {
	degree := len(p) - len(z)
	zOut := make([]complex128, len(z))
	for i, v := range z {
		zOut[i] = v * complex(wo, 0)
	}
	pOut := make([]complex128, len(p))
	for i, v := range p {
		pOut[i] = v * complex(wo, 0)
	}
	return zOut, pOut, k * math.Pow(wo, float64(degree))
}

func lowpassToHighpass(z, p []complex128, k, wo float64) ([]complex128, []complex128, float64) {
	degree := len(p) - len(z)
	w := complex(wo, 0)

	zOut := make([]complex128, 0, len(z)+degree)
	numerator := complex(1, 0)
	for _, v := range z {
		zOut = append(zOut, w/v)
		numerator *= -v
	}
	// Zeros at infinity move to the origin.
	for i := 0; i < degree; i++ {
		zOut = append(zOut, 0)
	}

	pOut := make([]complex128, len(p))
	denominator := complex(1, 0)
	for i, v := range p {
		pOut[i] = w / v
		denominator *= -v
	}
	return zOut, pOut, k * real(numerator/denominator)
}

func bilinear(z, p []complex128, k, fs float64) ([]complex128, []complex128, float64) {
	degree := len(p) - len(z)
	fs2 := complex(2*fs, 0)

	zOut := make([]complex128, 0, len(z)+degree)
	numerator := complex(1, 0)
	for _, v := range z {
		zOut = append(zOut, (fs2+v)/(fs2-v))
		numerator *= fs2 - v
	}
	// Zeros at infinity map to Nyquist.
	for i := 0; i < degree; i++ {
		zOut = append(zOut, -1)
	}

	pOut := make([]complex128, len(p))
	denominator := complex(1, 0)
	for i, v := range p {
		pOut[i] = (fs2 + v) / (fs2 - v)
		denominator *= fs2 - v
	}
	return zOut, pOut, k * real(numerator/denominator)
}

// realPoly expands prod(x - r) and returns the real parts, highest power first.
func realPoly(roots []complex128) []float64 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		next[0] = coeffs[0]
		for i := 1; i < len(coeffs); i++ {
			next[i] = coeffs[i] - r*coeffs[i-1]
		}
		next[len(coeffs)] = -r * coeffs[len(coeffs)-1]
		coeffs = next
	}
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}
