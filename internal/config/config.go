// Package config loads service settings from defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	labeling "analyzer-training/internal/labeling/domain"
	"analyzer-training/internal/signal"
	"analyzer-training/internal/synthetic"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

// Record store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Thresholds holds the labeling bands.
type Thresholds struct {
	Current labeling.ThresholdSpec `yaml:"current"`
	Voltage labeling.ThresholdSpec `yaml:"voltage"`
}

// RedisConfig configures the Redis record store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// OutputConfig selects the dataset sinks.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	XLSX        bool   `yaml:"xlsx"`
	PDF         bool   `yaml:"pdf"`
	PersistRows bool   `yaml:"persist_rows"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Prefix    string `yaml:"s3_prefix"`
	S3Region    string `yaml:"s3_region"`
	WebhookURL  string `yaml:"webhook_url"` // comma separated
}

// Config is the service configuration.
type Config struct {
	HTTPAddr    string                  `yaml:"http_addr"`
	DatabaseURL string                  `yaml:"database_url"`
	Store       string                  `yaml:"store"`
	Redis       RedisConfig             `yaml:"redis"`
	JWTSecret   string                  `yaml:"jwt_secret"`
	BuildCron   string                  `yaml:"build_cron"`
	Seed        uint64                  `yaml:"seed"`
	Thresholds  Thresholds              `yaml:"thresholds"`
	Filter      signal.BandFilterConfig `yaml:"filter"`
	Synthetic   synthetic.Params        `yaml:"synthetic"`
	Output      OutputConfig            `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		Store:    StoreMemory,
		Seed:     42,
		Thresholds: Thresholds{
			Current: labeling.DefaultCurrentThresholds(),
			Voltage: labeling.DefaultVoltageThresholds(),
		},
		Filter:    signal.DefaultBandFilterConfig(),
		Synthetic: synthetic.DefaultParams(),
		Output: OutputConfig{
			Dir:  "var/datasets",
			XLSX: true,
			PDF:  true,
		},
	}
}

// Load reads ANALYZER_CONFIG if set, then applies environment overrides and validates.
func Load() (Config, error) {
	return LoadFile(os.Getenv("ANALYZER_CONFIG"))
}

// LoadFile overlays path (if not empty) and the environment on the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", cfg.DatabaseURL))
	cfg.Store = getenvDefault("ANALYZER_STORE", cfg.Store)
	cfg.Redis.Addr = getenvDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenvDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getenvIntDefault("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = getenvDuration("REDIS_RECORD_TTL", cfg.Redis.TTL)
	cfg.JWTSecret = getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", cfg.JWTSecret))
	cfg.BuildCron = getenvDefault("ANALYZER_BUILD_CRON", cfg.BuildCron)
	cfg.Seed = getenvUintDefault("ANALYZER_SEED", cfg.Seed)

	cfg.Thresholds.Current.Upper = getenvFloatDefault("CURRENT_UPPER", cfg.Thresholds.Current.Upper)
	cfg.Thresholds.Current.Lower = getenvFloatDefault("CURRENT_LOWER", cfg.Thresholds.Current.Lower)
	cfg.Thresholds.Voltage.Upper = getenvFloatDefault("VOLTAGE_UPPER", cfg.Thresholds.Voltage.Upper)
	cfg.Thresholds.Voltage.Lower = getenvFloatDefault("VOLTAGE_LOWER", cfg.Thresholds.Voltage.Lower)

	cfg.Filter.SampleRate = getenvFloatDefault("FILTER_SAMPLE_RATE", cfg.Filter.SampleRate)
	cfg.Filter.Order = getenvIntDefault("FILTER_ORDER", cfg.Filter.Order)
	cfg.Filter.HighPassCutoff = getenvFloatDefault("FILTER_HIGH_PASS_CUTOFF", cfg.Filter.HighPassCutoff)
	cfg.Filter.LowPassCutoff = getenvFloatDefault("FILTER_LOW_PASS_CUTOFF", cfg.Filter.LowPassCutoff)

	cfg.Synthetic.NumSamples = getenvIntDefault("SYNTHETIC_ROWS", cfg.Synthetic.NumSamples)
	cfg.Synthetic.AnomalyFraction = getenvFloatDefault("SYNTHETIC_ANOMALY_FRACTION", cfg.Synthetic.AnomalyFraction)
	cfg.Synthetic.WindowSamples = getenvIntDefault("SYNTHETIC_WINDOW_SAMPLES", cfg.Synthetic.WindowSamples)

	cfg.Output.Dir = getenvDefault("OUTPUT_DIR", cfg.Output.Dir)
	cfg.Output.XLSX = getenvBoolDefault("OUTPUT_XLSX", cfg.Output.XLSX)
	cfg.Output.PDF = getenvBoolDefault("OUTPUT_PDF", cfg.Output.PDF)
	cfg.Output.PersistRows = getenvBoolDefault("OUTPUT_PERSIST_ROWS", cfg.Output.PersistRows)
	cfg.Output.S3Bucket = getenvDefault("S3_BUCKET", cfg.Output.S3Bucket)
	cfg.Output.S3Prefix = getenvDefault("S3_PREFIX", cfg.Output.S3Prefix)
	cfg.Output.S3Region = getenvDefault("AWS_REGION", cfg.Output.S3Region)
	cfg.Output.WebhookURL = getenvDefault("BUILD_WEBHOOK_URL", cfg.Output.WebhookURL)
}

// Validate rejects settings that would fail mid-build.
func (c Config) Validate() error {
	if c.Thresholds.Current.Metric != labeling.MetricCurrent {
		return fmt.Errorf("%w: thresholds.current metric is %q", ErrInvalidConfig, c.Thresholds.Current.Metric)
	}
	if c.Thresholds.Voltage.Metric != labeling.MetricVoltage {
		return fmt.Errorf("%w: thresholds.voltage metric is %q", ErrInvalidConfig, c.Thresholds.Voltage.Metric)
	}
	if err := c.Thresholds.Current.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Thresholds.Voltage.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("%w: filter: %w", ErrInvalidConfig, err)
	}
	if err := c.Synthetic.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL or PG_DSN is required for the postgres store", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: REDIS_ADDR is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	if c.Output.PersistRows && c.DatabaseURL == "" {
		return fmt.Errorf("%w: persist_rows requires a database", ErrInvalidConfig)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvUintDefault(key string, fallback uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
