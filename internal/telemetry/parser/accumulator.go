package parser

import (
	"sort"
	"sync"

	telemetry "analyzer-training/internal/telemetry/domain"
)

// RegisterCount is one row of the per-register occurrence table.
type RegisterCount struct {
	Register string `json:"start_register"`
	Count    int    `json:"count"`
}

// Accumulator collects parsed records for one collection session: every record, the
// current-channel (1006) audit trail, and occurrence counts per register seen.
type Accumulator struct {
	mu     sync.Mutex
	counts map[string]int
	all    []telemetry.RawRecord
	audit  []telemetry.RawRecord
}

// NewAccumulator constructs an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{counts: make(map[string]int)}
}

// Add records one parsed record. Records without a register are kept but not counted.
func (a *Accumulator) Add(record telemetry.RawRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if record.StartRegister != "" {
		a.counts[record.StartRegister]++
	}
	if record.StartRegister == telemetry.RegisterCurrent.String() {
		a.audit = append(a.audit, record)
	}
	a.all = append(a.all, record)
}

// AddAll records records in order.
func (a *Accumulator) AddAll(records []telemetry.RawRecord) {
	for _, record := range records {
		a.Add(record)
	}
}

// Total returns the number of records added.
func (a *Accumulator) Total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.all)
}

// All returns a copy of every record in arrival order.
func (a *Accumulator) All() []telemetry.RawRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]telemetry.RawRecord(nil), a.all...)
}

// Audit returns a copy of the current-channel records.
func (a *Accumulator) Audit() []telemetry.RawRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]telemetry.RawRecord(nil), a.audit...)
}

// Counts returns occurrences per register, sorted by register.
func (a *Accumulator) Counts() []RegisterCount {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]RegisterCount, 0, len(a.counts))
	for register, count := range a.counts {
		out = append(out, RegisterCount{Register: register, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Register < out[j].Register })
	return out
}
