package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	dataset "analyzer-training/internal/dataset/domain"
)

type builderStub struct {
	mu      sync.Mutex
	windows []string
	err     error
}

func (b *builderStub) BuildProcessed(ctx context.Context, window string) (dataset.BuildSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = append(b.windows, window)
	return dataset.BuildSummary{ID: "processed-" + window, Window: window}, b.err
}

func TestScheduler_ClosedWindow(t *testing.T) {
	builder := &builderStub{}
	clock := fixedClock{now: time.Date(2024, 3, 1, 0, 10, 0, 0, time.UTC)}
	scheduler, err := NewScheduler(builder, "5 * * * *", WithSchedulerClock(clock))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if got := scheduler.ClosedWindow(); got != "20240229T23" {
		t.Fatalf("closed window = %q, want 20240229T23", got)
	}

	summary, err := scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if summary.Window != "20240229T23" || len(builder.windows) != 1 {
		t.Fatalf("unexpected run: %+v, %v", summary, builder.windows)
	}
}

func TestScheduler_RunOnceErrors(t *testing.T) {
	builder := &builderStub{err: fmt.Errorf("%w: 20240101T00", ErrNoRecords)}
	scheduler, err := NewScheduler(builder, "@hourly")
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("empty window should not fail, got %v", err)
	}

	boom := errors.New("boom")
	builder.err = boom
	if _, err := scheduler.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestNewScheduler_Validates(t *testing.T) {
	if _, err := NewScheduler(&builderStub{}, "every hour"); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if _, err := NewScheduler(nil, "@hourly"); err == nil {
		t.Fatalf("expected error for nil builder")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler, err := NewScheduler(&builderStub{}, "@hourly")
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	scheduler.Stop()
}
