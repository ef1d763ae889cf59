package synthetic

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidParams is returned when generation parameters are out of range.
var ErrInvalidParams = errors.New("synthetic: invalid params")

// Params configures the synthetic dataset.
type Params struct {
	NumSamples      int           `yaml:"num_samples" json:"num_samples"`
	AnomalyFraction float64       `yaml:"anomaly_fraction" json:"anomaly_fraction"`
	SampleRate      float64       `yaml:"sample_rate" json:"sample_rate"`
	WindowSamples   int           `yaml:"window_samples" json:"window_samples"`
	LineFrequency   float64       `yaml:"line_frequency" json:"line_frequency"`
	VoltageMin      float64       `yaml:"voltage_min" json:"voltage_min"`
	VoltageMax      float64       `yaml:"voltage_max" json:"voltage_max"`
	HarmonicOrders  []int         `yaml:"harmonic_orders" json:"harmonic_orders"`
	HarmonicLevel   float64       `yaml:"harmonic_level" json:"harmonic_level"`
	NormalNoise     float64       `yaml:"normal_noise" json:"normal_noise"`
	AnomalyNoise    float64       `yaml:"anomaly_noise" json:"anomaly_noise"`
	Start           time.Time     `yaml:"start" json:"start"`
	Interval        time.Duration `yaml:"interval" json:"interval"`
}

// DefaultParams returns 1000 one-minute rows of 60 s at 1 kHz, 20% anomalous.
func DefaultParams() Params {
	return Params{
		NumSamples:      1000,
		AnomalyFraction: 0.2,
		SampleRate:      1000,
		WindowSamples:   60000,
		LineFrequency:   50,
		VoltageMin:      10,
		VoltageMax:      300,
		HarmonicOrders:  []int{2, 3, 4, 5, 6},
		HarmonicLevel:   0.05,
		NormalNoise:     0.05,
		AnomalyNoise:    0.1,
		Start:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:        time.Minute,
	}
}

// Validate checks ranges before any generation.
func (p Params) Validate() error {
	switch {
	case p.NumSamples <= 0:
		return fmt.Errorf("%w: num_samples must be positive", ErrInvalidParams)
	case !(p.AnomalyFraction >= 0 && p.AnomalyFraction <= 1):
		return fmt.Errorf("%w: anomaly_fraction must be within [0, 1]", ErrInvalidParams)
	case !(p.SampleRate > 0) || math.IsInf(p.SampleRate, 0):
		return fmt.Errorf("%w: sample_rate must be positive", ErrInvalidParams)
	case p.WindowSamples < 2:
		return fmt.Errorf("%w: window_samples must be at least 2", ErrInvalidParams)
	case !(p.LineFrequency > 0 && p.LineFrequency < p.SampleRate/2):
		return fmt.Errorf("%w: line_frequency must be below nyquist", ErrInvalidParams)
	case !(p.VoltageMin < p.VoltageMax):
		return fmt.Errorf("%w: voltage_min must be below voltage_max", ErrInvalidParams)
	case p.HarmonicLevel < 0 || p.NormalNoise < 0 || p.AnomalyNoise < 0:
		return fmt.Errorf("%w: levels must not be negative", ErrInvalidParams)
	case p.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrInvalidParams)
	}
	for _, order := range p.HarmonicOrders {
		if order < 2 {
			return fmt.Errorf("%w: harmonic order %d below 2", ErrInvalidParams, order)
		}
		if float64(order)*p.LineFrequency >= p.SampleRate/2 {
			return fmt.Errorf("%w: harmonic order %d at %g Hz is not below nyquist", ErrInvalidParams, order, float64(order)*p.LineFrequency)
		}
	}
	return nil
}

// AnomalyCount returns round(NumSamples * AnomalyFraction).
func (p Params) AnomalyCount() int {
	return int(math.Round(float64(p.NumSamples) * p.AnomalyFraction))
}
