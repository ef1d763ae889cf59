package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	dataset "analyzer-training/internal/dataset/domain"
	telemetry "analyzer-training/internal/telemetry/domain"
)

// ProcessedBuilder is the part of Service the scheduler drives.
type ProcessedBuilder interface {
	BuildProcessed(ctx context.Context, window string) (dataset.BuildSummary, error)
}

// Scheduler builds the most recently closed window on a cron schedule.
type Scheduler struct {
	builder ProcessedBuilder
	spec    string
	cron    *cron.Cron
	clock   Clock
	logger  *log.Logger
}

// SchedulerOption customizes the scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock assigns a clock.
func WithSchedulerClock(clock Clock) SchedulerOption {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSchedulerLogger assigns a logger.
func WithSchedulerLogger(logger *log.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler validates spec, a standard five-field cron expression or descriptor.
func NewScheduler(builder ProcessedBuilder, spec string, opts ...SchedulerOption) (*Scheduler, error) {
	if builder == nil {
		return nil, errors.New("scheduler: nil builder")
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}
	s := &Scheduler{
		builder: builder,
		spec:    spec,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		clock:   systemClock{},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start registers the job and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Printf("scheduler: build error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: add job: %w", err)
	}
	s.cron.Start()
	s.logger.Printf("scheduler: processed builds scheduled at %q", s.spec)
	return nil
}

// Stop stops the runner and waits for a running build.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// ClosedWindow returns the window that ended most recently before now.
func (s *Scheduler) ClosedWindow() string {
	return telemetry.WindowKey(s.clock.Now().Add(-time.Hour))
}

// RunOnce builds the most recently closed window. An empty window is not an error.
func (s *Scheduler) RunOnce(ctx context.Context) (dataset.BuildSummary, error) {
	window := s.ClosedWindow()
	summary, err := s.builder.BuildProcessed(ctx, window)
	if errors.Is(err, ErrNoRecords) {
		s.logger.Printf("scheduler: window %s has no records", window)
		return summary, nil
	}
	return summary, err
}
