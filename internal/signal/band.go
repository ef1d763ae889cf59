package signal

import "fmt"

// BandFilterConfig describes the high-pass then low-pass cascade applied to current.
type BandFilterConfig struct {
	SampleRate     float64 `yaml:"sample_rate"`
	Order          int     `yaml:"order"`
	HighPassCutoff float64 `yaml:"high_pass_cutoff"`
	LowPassCutoff  float64 `yaml:"low_pass_cutoff"`
}

// DefaultBandFilterConfig keeps the 45-65 Hz band around a 50/60 Hz line at 1 kHz.
func DefaultBandFilterConfig() BandFilterConfig {
	return BandFilterConfig{
		SampleRate:     1000,
		Order:          5,
		HighPassCutoff: 45,
		LowPassCutoff:  65,
	}
}

// Validate checks both stages and their ordering.
func (c BandFilterConfig) Validate() error {
	if err := ValidateStage(HighPass, c.Order, c.HighPassCutoff, c.SampleRate); err != nil {
		return fmt.Errorf("high-pass: %w", err)
	}
	if err := ValidateStage(LowPass, c.Order, c.LowPassCutoff, c.SampleRate); err != nil {
		return fmt.Errorf("low-pass: %w", err)
	}
	if c.HighPassCutoff >= c.LowPassCutoff {
		return fmt.Errorf("%w: high-pass cutoff %v must be below low-pass cutoff %v", ErrInvalidFilterConfig, c.HighPassCutoff, c.LowPassCutoff)
	}
	return nil
}

// BandFilter is a zero-phase high-pass stage followed by a zero-phase low-pass stage.
type BandFilter struct {
	cfg      BandFilterConfig
	highPass Butterworth
	lowPass  Butterworth
}

// NewBandFilter designs both stages up front so bad parameters fail before any data is seen.
func NewBandFilter(cfg BandFilterConfig) (*BandFilter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hp, err := DesignButterworth(HighPass, cfg.Order, cfg.HighPassCutoff, cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	lp, err := DesignButterworth(LowPass, cfg.Order, cfg.LowPassCutoff, cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	return &BandFilter{cfg: cfg, highPass: hp, lowPass: lp}, nil
}

// Config returns the parameters the filter was built with.
func (f *BandFilter) Config() BandFilterConfig {
	return f.cfg
}

// MinSamples is the shortest series Apply accepts.
func (f *BandFilter) MinSamples() int {
	need := f.highPass.PadLen()
	if n := f.lowPass.PadLen(); n > need {
		need = n
	}
	return need + 1
}

// Apply filters x and returns a new series of the same length.
func (f *BandFilter) Apply(x []float64) ([]float64, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil band filter", ErrInvalidFilterConfig)
	}
	y, err := FiltFilt(f.highPass, x)
	if err != nil {
		return nil, err
	}
	return FiltFilt(f.lowPass, y)
}
