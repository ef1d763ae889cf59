package signal

import (
	"errors"
	"math"
	"testing"
)

func TestDesignButterworth_FirstOrderHalfNyquist(t *testing.T) {
	f, err := DesignButterworth(LowPass, 1, 250, 1000)
	if err != nil {
		t.Fatalf("design: %v", err)
	}
	wantB := []float64{0.5, 0.5}
	wantA := []float64{1, 0}
	for i := range wantB {
		if math.Abs(f.B[i]-wantB[i]) > 1e-12 {
			t.Fatalf("b[%d] = %v, want %v", i, f.B[i], wantB[i])
		}
		if math.Abs(f.A[i]-wantA[i]) > 1e-12 {
			t.Fatalf("a[%d] = %v, want %v", i, f.A[i], wantA[i])
		}
	}
}

func TestDesignButterworth_Gains(t *testing.T) {
	lp, err := DesignButterworth(LowPass, 5, 65, 1000)
	if err != nil {
		t.Fatalf("design low-pass: %v", err)
	}
	if len(lp.B) != 6 || len(lp.A) != 6 {
		t.Fatalf("expected 6 coefficients, got b=%d a=%d", len(lp.B), len(lp.A))
	}
	if gain := sum(lp.B) / sum(lp.A); math.Abs(gain-1) > 1e-9 {
		t.Fatalf("low-pass DC gain = %v, want 1", gain)
	}

	hp, err := DesignButterworth(HighPass, 5, 45, 1000)
	if err != nil {
		t.Fatalf("design high-pass: %v", err)
	}
	if gain := sum(hp.B) / sum(hp.A); math.Abs(gain) > 1e-9 {
		t.Fatalf("high-pass DC gain = %v, want 0", gain)
	}
	if gain := alternating(hp.B) / alternating(hp.A); math.Abs(math.Abs(gain)-1) > 1e-9 {
		t.Fatalf("high-pass Nyquist gain = %v, want 1", gain)
	}
}

func TestDesignButterworth_InvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		kind   FilterKind
		order  int
		cutoff float64
		fs     float64
	}{
		{"cutoff at nyquist", LowPass, 5, 500, 1000},
		{"cutoff above nyquist", HighPass, 5, 700, 1000},
		{"zero cutoff", LowPass, 5, 0, 1000},
		{"zero order", LowPass, 0, 65, 1000},
		{"zero rate", LowPass, 5, 65, 0},
		{"unknown kind", FilterKind("bandstop"), 5, 65, 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DesignButterworth(tc.kind, tc.order, tc.cutoff, tc.fs)
			if !errors.Is(err, ErrInvalidFilterConfig) {
				t.Fatalf("expected ErrInvalidFilterConfig, got %v", err)
			}
		})
	}
}

func TestFiltFilt_PreservesLength(t *testing.T) {
	f, err := DesignButterworth(LowPass, 5, 65, 1000)
	if err != nil {
		t.Fatalf("design: %v", err)
	}
	for _, n := range []int{19, 20, 100, 1001} {
		x := make([]float64, n)
		for i := range x {
			x[i] = math.Sin(float64(i) / 7)
		}
		y, err := FiltFilt(f, x)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(y) != n {
			t.Fatalf("n=%d: output length %d", n, len(y))
		}
	}
}

func TestFiltFilt_InsufficientSamples(t *testing.T) {
	f, err := DesignButterworth(HighPass, 5, 45, 1000)
	if err != nil {
		t.Fatalf("design: %v", err)
	}
	_, err = FiltFilt(f, make([]float64, 18))
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("expected ErrInsufficientSamples, got %v", err)
	}
	var short *InsufficientSamplesError
	if !errors.As(err, &short) {
		t.Fatalf("expected *InsufficientSamplesError, got %T", err)
	}
	if short.Got != 18 || short.Need != 18 {
		t.Fatalf("unexpected error fields: %+v", short)
	}
}

func TestFiltFilt_ConstantInputSteadyState(t *testing.T) {
	const level = 3.0
	x := make([]float64, 200)
	for i := range x {
		x[i] = level
	}

	hp, err := DesignButterworth(HighPass, 5, 45, 1000)
	if err != nil {
		t.Fatalf("design high-pass: %v", err)
	}
	y, err := FiltFilt(hp, x)
	if err != nil {
		t.Fatalf("high-pass: %v", err)
	}
	for i, v := range y {
		if math.Abs(v) > 1e-6 {
			t.Fatalf("high-pass y[%d] = %v, want ~0", i, v)
		}
	}

	lp, err := DesignButterworth(LowPass, 5, 65, 1000)
	if err != nil {
		t.Fatalf("design low-pass: %v", err)
	}
	y, err = FiltFilt(lp, x)
	if err != nil {
		t.Fatalf("low-pass: %v", err)
	}
	for i, v := range y {
		if math.Abs(v-level) > 1e-6 {
			t.Fatalf("low-pass y[%d] = %v, want ~%v", i, v, level)
		}
	}
}

func TestBandFilter_PassesLineFrequency(t *testing.T) {
	f, err := NewBandFilter(DefaultBandFilterConfig())
	if err != nil {
		t.Fatalf("new band filter: %v", err)
	}
	if f.MinSamples() != 19 {
		t.Fatalf("min samples = %d, want 19", f.MinSamples())
	}

	line := sine(2000, 50, 1000, 1)
	out, err := f.Apply(line)
	if err != nil {
		t.Fatalf("apply 50 Hz: %v", err)
	}
	if len(out) != len(line) {
		t.Fatalf("length changed: %d -> %d", len(line), len(out))
	}
	if ratio := rms(out[500:1500]) / rms(line[500:1500]); ratio < 0.4 || ratio > 1.0 {
		t.Fatalf("50 Hz gain %v outside [0.4, 1.0]", ratio)
	}

	high := sine(2000, 200, 1000, 1)
	out, err = f.Apply(high)
	if err != nil {
		t.Fatalf("apply 200 Hz: %v", err)
	}
	if ratio := rms(out[500:1500]) / rms(high[500:1500]); ratio > 0.05 {
		t.Fatalf("200 Hz gain %v, want < 0.05", ratio)
	}
}

func TestBandFilter_RejectsInvertedBand(t *testing.T) {
	cfg := DefaultBandFilterConfig()
	cfg.HighPassCutoff, cfg.LowPassCutoff = 65, 45
	if _, err := NewBandFilter(cfg); !errors.Is(err, ErrInvalidFilterConfig) {
		t.Fatalf("expected ErrInvalidFilterConfig, got %v", err)
	}
}

func TestTHD(t *testing.T) {
	cases := []struct {
		name      string
		harmonics []float64
		want      float64
	}{
		{"no harmonics", []float64{100, 0, 0, 0}, 0},
		{"zero fundamental", []float64{0, 10, 10}, 0},
		{"three four five", []float64{100, 3, 4}, 0.05},
		{"empty", nil, 0},
		{"fundamental only", []float64{230}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := THD(tc.harmonics)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("THD(%v) = %v, want %v", tc.harmonics, got, tc.want)
			}
		})
	}
}

func TestSpectrumHarmonics(t *testing.T) {
	pure := sine(1000, 50, 1000, 2)
	harmonics := SpectrumHarmonics(pure, 1000, 50)
	if len(harmonics) != 9 {
		t.Fatalf("expected 9 harmonics below Nyquist, got %d", len(harmonics))
	}
	if math.Abs(harmonics[0]-1000) > 1e-6 {
		t.Fatalf("fundamental magnitude = %v, want 1000", harmonics[0])
	}
	if thd := THD(harmonics); thd > 1e-9 {
		t.Fatalf("pure sine THD = %v, want ~0", thd)
	}

	distorted := sine(1000, 50, 1000, 1)
	third := sine(1000, 150, 1000, 0.1)
	for i := range distorted {
		distorted[i] += third[i]
	}
	if thd := WaveformTHD(distorted, 1000, 50); math.Abs(thd-0.1) > 1e-9 {
		t.Fatalf("distorted THD = %v, want 0.1", thd)
	}
}

func sine(n int, freq, fs, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return out
}

func rms(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s / float64(len(x)))
}

func sum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s
}

func alternating(x []float64) float64 {
	var s float64
	for i, v := range x {
		if i%2 == 0 {
			s += v
		} else {
			s -= v
		}
	}
	return s
}
