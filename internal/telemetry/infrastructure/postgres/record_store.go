package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	telemetry "analyzer-training/internal/telemetry/domain"
)

const defaultRecordsTable = "telemetry_raw_records"

// RecordStore persists raw records per collection window.
type RecordStore struct {
	db    *sql.DB
	table string
}

// RecordStoreOption configures the store.
type RecordStoreOption func(*RecordStore)

// WithTable overrides the default table name.
func WithTable(table string) RecordStoreOption {
	return func(s *RecordStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewRecordStore constructs a store with the default table name.
func NewRecordStore(db *sql.DB, opts ...RecordStoreOption) *RecordStore {
	store := &RecordStore{db: db, table: defaultRecordsTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Append inserts records in one transaction. Arrival order follows the serial id.
func (s *RecordStore) Append(ctx context.Context, window string, records []telemetry.RawRecord) error {
	if s == nil || s.db == nil {
		return errors.New("record store: nil db")
	}
	if window == "" {
		return telemetry.ErrEmptyWindow
	}
	if len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	window_key,
	start_register,
	raw_data
) VALUES (
	$1, $2, $3
)`, s.table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx, window, record.StartRegister, record.RawData); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// List returns the records of window in arrival order.
func (s *RecordStore) List(ctx context.Context, window string) ([]telemetry.RawRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("record store: nil db")
	}
	if window == "" {
		return nil, telemetry.ErrEmptyWindow
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT start_register, raw_data
FROM %s
WHERE window_key = $1
ORDER BY id`, s.table), window)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []telemetry.RawRecord
	for rows.Next() {
		var record telemetry.RawRecord
		if err := rows.Scan(&record.StartRegister, &record.RawData); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
