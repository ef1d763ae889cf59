package labeling

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidThreshold is returned when a threshold band is empty or not finite.
var ErrInvalidThreshold = errors.New("labeling: invalid threshold")

// Metric names the quantity a threshold applies to.
type Metric string

const (
	MetricCurrent Metric = "current"
	MetricVoltage Metric = "voltage"
)

// Valid returns true when metric is supported.
func (m Metric) Valid() bool {
	switch m {
	case MetricCurrent, MetricVoltage:
		return true
	default:
		return false
	}
}

// ThresholdSpec is the accepted band for one metric. Values outside (not on) the band are issues.
type ThresholdSpec struct {
	Metric Metric  `yaml:"metric"`
	Upper  float64 `yaml:"upper"`
	Lower  float64 `yaml:"lower"`
}

// DefaultCurrentThresholds returns the over/under-current limits in amperes.
func DefaultCurrentThresholds() ThresholdSpec {
	return ThresholdSpec{Metric: MetricCurrent, Upper: 5.5, Lower: 0.05}
}

// DefaultVoltageThresholds returns the line-to-neutral over/under-voltage limits in volts.
func DefaultVoltageThresholds() ThresholdSpec {
	return ThresholdSpec{Metric: MetricVoltage, Upper: 300, Lower: 10}
}

// Validate checks spec invariants.
func (s ThresholdSpec) Validate() error {
	if !s.Metric.Valid() {
		return fmt.Errorf("%w: unknown metric %q", ErrInvalidThreshold, s.Metric)
	}
	if math.IsNaN(s.Upper) || math.IsNaN(s.Lower) || math.IsInf(s.Upper, 0) || math.IsInf(s.Lower, 0) {
		return fmt.Errorf("%w: %s bounds must be finite", ErrInvalidThreshold, s.Metric)
	}
	if s.Lower >= s.Upper {
		return fmt.Errorf("%w: %s lower %v must be below upper %v", ErrInvalidThreshold, s.Metric, s.Lower, s.Upper)
	}
	return nil
}

// IsIssue reports value > Upper or value < Lower. Boundary values are not issues.
func (s ThresholdSpec) IsIssue(value float64) bool {
	return value > s.Upper || value < s.Lower
}
