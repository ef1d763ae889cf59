package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	labeling "analyzer-training/internal/labeling/domain"
	"analyzer-training/internal/signal"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Thresholds.Current.Upper != 5.5 || cfg.Thresholds.Voltage.Lower != 10 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Thresholds)
	}
	if cfg.Filter.Order != 5 || cfg.Filter.HighPassCutoff != 45 {
		t.Fatalf("unexpected filter: %+v", cfg.Filter)
	}
	if cfg.Synthetic.NumSamples != 1000 || cfg.Store != StoreMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analyzer.yaml")
	yml := `
store: memory
seed: 7
thresholds:
  current:
    upper: 6
filter:
  low_pass_cutoff: 70
synthetic:
  num_samples: 50
  window_samples: 500
output:
  dir: /tmp/out
  xlsx: false
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("SYNTHETIC_ROWS", "80")
	t.Setenv("VOLTAGE_UPPER", "280")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 7 || cfg.Thresholds.Current.Upper != 6 || cfg.Thresholds.Current.Lower != 0.05 {
		t.Fatalf("yaml overlay not applied: %+v", cfg.Thresholds.Current)
	}
	if cfg.Thresholds.Current.Metric != labeling.MetricCurrent {
		t.Fatalf("metric lost in overlay: %q", cfg.Thresholds.Current.Metric)
	}
	if cfg.Filter.LowPassCutoff != 70 || cfg.Filter.HighPassCutoff != 45 {
		t.Fatalf("unexpected filter: %+v", cfg.Filter)
	}
	if cfg.Synthetic.NumSamples != 80 || cfg.Synthetic.WindowSamples != 500 || cfg.Synthetic.LineFrequency != 50 {
		t.Fatalf("unexpected synthetic: %+v", cfg.Synthetic)
	}
	if cfg.Thresholds.Voltage.Upper != 280 {
		t.Fatalf("env override not applied: %+v", cfg.Thresholds.Voltage)
	}
	if cfg.Output.Dir != "/tmp/out" || cfg.Output.XLSX || !cfg.Output.PDF {
		t.Fatalf("unexpected output: %+v", cfg.Output)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"inverted current band", func(c *Config) { c.Thresholds.Current.Lower = 6 }, labeling.ErrInvalidThreshold},
		{"equal voltage band", func(c *Config) { c.Thresholds.Voltage.Lower = 300 }, labeling.ErrInvalidThreshold},
		{"swapped metric", func(c *Config) { c.Thresholds.Current.Metric = labeling.MetricVoltage }, ErrInvalidConfig},
		{"cutoff above nyquist", func(c *Config) { c.Filter.LowPassCutoff = 600 }, signal.ErrInvalidFilterConfig},
		{"inverted filter band", func(c *Config) { c.Filter.HighPassCutoff = 80 }, signal.ErrInvalidFilterConfig},
		{"zero order", func(c *Config) { c.Filter.Order = 0 }, signal.ErrInvalidFilterConfig},
		{"no synthetic rows", func(c *Config) { c.Synthetic.NumSamples = 0 }, ErrInvalidConfig},
		{"unknown store", func(c *Config) { c.Store = "disk" }, ErrInvalidConfig},
		{"postgres without dsn", func(c *Config) { c.Store = StorePostgres }, ErrInvalidConfig},
		{"redis without addr", func(c *Config) { c.Store = StoreRedis }, ErrInvalidConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig wrap, got %v", err)
			}
		})
	}
}

func TestLoadFile_InvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("thresholds:\n  current:\n    lower: 9\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := LoadFile(path); !errors.Is(err, labeling.ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
