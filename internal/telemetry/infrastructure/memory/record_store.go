package memory

import (
	"context"
	"sort"
	"sync"

	telemetry "analyzer-training/internal/telemetry/domain"
)

// RecordStore is an in-memory RecordStore for tools and tests.
type RecordStore struct {
	mu      sync.RWMutex
	windows map[string][]telemetry.RawRecord
}

// NewRecordStore constructs an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{windows: make(map[string][]telemetry.RawRecord)}
}

// Append adds records to the end of window.
func (s *RecordStore) Append(ctx context.Context, window string, records []telemetry.RawRecord) error {
	_ = ctx
	if window == "" {
		return telemetry.ErrEmptyWindow
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows[window] = append(s.windows[window], records...)
	return nil
}

// List returns a copy of the records in window, in arrival order.
func (s *RecordStore) List(ctx context.Context, window string) ([]telemetry.RawRecord, error) {
	_ = ctx
	if window == "" {
		return nil, telemetry.ErrEmptyWindow
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]telemetry.RawRecord(nil), s.windows[window]...), nil
}

// Windows returns the known window keys, sorted.
func (s *RecordStore) Windows() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.windows))
	for key := range s.windows {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
