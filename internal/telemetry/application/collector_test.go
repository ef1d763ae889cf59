package application

import (
	"context"
	"errors"
	"testing"
	"time"

	telemetry "analyzer-training/internal/telemetry/domain"
	"analyzer-training/internal/telemetry/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newCollector(t *testing.T, store telemetry.RecordStore) *Collector {
	t.Helper()
	collector, err := NewCollector(store, WithClock(fixedClock{now: time.Date(2024, 5, 6, 7, 30, 0, 0, time.UTC)}))
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	return collector
}

func TestCollector_Collect(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	collector := newCollector(t, store)

	blobs := []string{
		`{"Start register": 1006, "Raw data": "1.25"}`,
		"",
		`{"Start register"：１００９, "Raw data": 230}`,
		`{"Raw data": 7}`,
		`{"Start register": 1006,, "Raw data": -0.5}`,
	}
	result, err := collector.Collect(ctx, "", blobs)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.Window != "20240506T07" || result.Accepted != 4 || result.Missing != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	records, err := store.List(ctx, "20240506T07")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []telemetry.RawRecord{
		{StartRegister: "1006", RawData: "1.25"},
		{StartRegister: "1009", RawData: "230"},
		{StartRegister: "", RawData: "7"},
		{StartRegister: "1006", RawData: "-0.5"},
	}
	if len(records) != len(want) {
		t.Fatalf("records = %+v", records)
	}
	for i := range want {
		if records[i] != want[i] {
			t.Fatalf("record %d = %+v, want %+v", i, records[i], want[i])
		}
	}

	counts, err := collector.Counts(ctx, "")
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(counts) != 2 || counts[0].Register != "1006" || counts[0].Count != 2 || counts[1].Count != 1 {
		t.Fatalf("counts = %+v", counts)
	}
	audit, err := collector.Audit(ctx, "20240506T07")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if len(audit) != 2 || audit[1].RawData != "-0.5" {
		t.Fatalf("audit = %+v", audit)
	}
	all, err := collector.Records(ctx, "20240506T07")
	if err != nil || len(all) != 4 {
		t.Fatalf("records = %d, %v", len(all), err)
	}
}

func TestCollector_Errors(t *testing.T) {
	ctx := context.Background()
	collector := newCollector(t, memory.NewRecordStore())

	if _, err := collector.Collect(ctx, "", []string{" ", ""}); !errors.Is(err, ErrNoBlobs) {
		t.Fatalf("expected ErrNoBlobs, got %v", err)
	}
	if _, err := collector.Collect(ctx, "yesterday", []string{`{"Raw data": 1}`}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if _, err := NewCollector(nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
	counts, err := collector.Counts(ctx, "20200101T00")
	if err != nil || len(counts) != 0 {
		t.Fatalf("empty window counts = %+v, %v", counts, err)
	}
}
