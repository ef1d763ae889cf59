package memory

import (
	"context"
	"errors"
	"sync"

	dataset "analyzer-training/internal/dataset/domain"
)

// Repository is an in-memory dataset repository for tools and tests.
type Repository struct {
	mu        sync.RWMutex
	builds    map[string]dataset.BuildSummary
	processed map[string][]dataset.ProcessedRow
	synthetic map[string][]dataset.SyntheticRecord
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{
		builds:    make(map[string]dataset.BuildSummary),
		processed: make(map[string][]dataset.ProcessedRow),
		synthetic: make(map[string][]dataset.SyntheticRecord),
	}
}

// SaveBuild upserts a summary.
func (r *Repository) SaveBuild(ctx context.Context, summary dataset.BuildSummary) error {
	_ = ctx
	if summary.ID == "" {
		return errors.New("dataset repo: empty build id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds[summary.ID] = summary
	return nil
}

// SaveProcessedRows replaces the processed rows of a build.
func (r *Repository) SaveProcessedRows(ctx context.Context, buildID string, rows []dataset.ProcessedRow) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builds[buildID]; !ok {
		return errors.New("dataset repo: unknown build")
	}
	r.processed[buildID] = append([]dataset.ProcessedRow(nil), rows...)
	return nil
}

// SaveSyntheticRows stores records starting at offset.
func (r *Repository) SaveSyntheticRows(ctx context.Context, buildID string, offset int, records []dataset.SyntheticRecord) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builds[buildID]; !ok {
		return errors.New("dataset repo: unknown build")
	}
	existing := r.synthetic[buildID]
	if offset != len(existing) {
		return errors.New("dataset repo: non-contiguous synthetic rows")
	}
	r.synthetic[buildID] = append(existing, records...)
	return nil
}

// DeleteBuild removes a build and its rows.
func (r *Repository) DeleteBuild(ctx context.Context, buildID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.builds, buildID)
	delete(r.processed, buildID)
	delete(r.synthetic, buildID)
	return nil
}

// Build returns a saved summary.
func (r *Repository) Build(id string) (dataset.BuildSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summary, ok := r.builds[id]
	return summary, ok
}

// ProcessedRows returns the rows saved for a build.
func (r *Repository) ProcessedRows(id string) []dataset.ProcessedRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]dataset.ProcessedRow(nil), r.processed[id]...)
}

// SyntheticRows returns the records saved for a build.
func (r *Repository) SyntheticRows(id string) []dataset.SyntheticRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]dataset.SyntheticRecord(nil), r.synthetic[id]...)
}
