package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"analyzer-training/internal/observability/metrics"
	telemetry "analyzer-training/internal/telemetry/domain"
	"analyzer-training/internal/telemetry/parser"
)

var (
	// ErrNoBlobs is returned when a collect call carries nothing to parse.
	ErrNoBlobs = errors.New("collector: no blobs")
	// ErrInvalidWindow is returned for a window key that is not an hour key.
	ErrInvalidWindow = errors.New("collector: invalid window")
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// CollectResult reports one ingest call.
type CollectResult struct {
	Window   string `json:"window"`
	Accepted int    `json:"accepted"`
	Missing  int    `json:"missing"`
}

// Collector parses raw blobs into records and buffers them per window.
type Collector struct {
	store  telemetry.RecordStore
	clock  Clock
	logger *log.Logger
}

// CollectorOption customizes the collector.
type CollectorOption func(*Collector)

// WithClock assigns a clock.
func WithClock(clock Clock) CollectorOption {
	return func(c *Collector) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) CollectorOption {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCollector constructs a collector over store.
func NewCollector(store telemetry.RecordStore, opts ...CollectorOption) (*Collector, error) {
	if store == nil {
		return nil, errors.New("collector: nil record store")
	}
	c := &Collector{
		store:  store,
		clock:  systemClock{},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CurrentWindow returns the window that is open now.
func (c *Collector) CurrentWindow() string {
	return telemetry.WindowKey(c.clock.Now())
}

// Collect parses blobs and appends the records to window, or to the current window when
// window is blank. Blank blobs are skipped; records with missing fields are kept.
func (c *Collector) Collect(ctx context.Context, window string, blobs []string) (CollectResult, error) {
	window, err := c.resolveWindow(window)
	if err != nil {
		return CollectResult{}, err
	}

	started := time.Now()
	result := CollectResult{Window: window}
	records := make([]telemetry.RawRecord, 0, len(blobs))
	for _, blob := range blobs {
		if strings.TrimSpace(blob) == "" {
			continue
		}
		record := parser.Parse(blob)
		if record.StartRegister == "" || record.RawData == "" {
			result.Missing++
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return result, ErrNoBlobs
	}

	if err := c.store.Append(ctx, window, records); err != nil {
		metrics.ObserveIngest(metrics.ResultError, time.Since(started))
		return result, fmt.Errorf("collector: append: %w", err)
	}
	for _, record := range records {
		metrics.IncRecord(record.StartRegister)
	}
	metrics.ObserveIngest(metrics.ResultSuccess, time.Since(started))

	result.Accepted = len(records)
	if result.Missing > 0 {
		c.logger.Printf("collector: window %s: %d of %d records missing fields", window, result.Missing, result.Accepted)
	}
	return result, nil
}

// Counts returns the per-register occurrence table for window.
func (c *Collector) Counts(ctx context.Context, window string) ([]parser.RegisterCount, error) {
	acc, err := c.load(ctx, window)
	if err != nil {
		return nil, err
	}
	return acc.Counts(), nil
}

// Records returns every record buffered in window.
func (c *Collector) Records(ctx context.Context, window string) ([]telemetry.RawRecord, error) {
	acc, err := c.load(ctx, window)
	if err != nil {
		return nil, err
	}
	return acc.All(), nil
}

// Audit returns the current-channel records buffered in window.
func (c *Collector) Audit(ctx context.Context, window string) ([]telemetry.RawRecord, error) {
	acc, err := c.load(ctx, window)
	if err != nil {
		return nil, err
	}
	return acc.Audit(), nil
}

// load rebuilds the tables from the store, so records collected by another replica
// or before a restart are counted too.
func (c *Collector) load(ctx context.Context, window string) (*parser.Accumulator, error) {
	window, err := c.resolveWindow(window)
	if err != nil {
		return nil, err
	}
	records, err := c.store.List(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("collector: list: %w", err)
	}
	acc := parser.NewAccumulator()
	acc.AddAll(records)
	return acc, nil
}

func (c *Collector) resolveWindow(window string) (string, error) {
	window = strings.TrimSpace(window)
	if window == "" {
		return c.CurrentWindow(), nil
	}
	if _, err := telemetry.ParseWindowKey(window); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidWindow, window)
	}
	return window, nil
}
