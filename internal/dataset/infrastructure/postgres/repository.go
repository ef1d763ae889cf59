package postgres

import (
	"context"
	"database/sql"
	"errors"

	dataset "analyzer-training/internal/dataset/domain"
)

// Repository is a Postgres dataset repository.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveBuild upserts a build summary.
func (r *Repository) SaveBuild(ctx context.Context, summary dataset.BuildSummary) error {
	if r == nil || r.db == nil {
		return errors.New("dataset repo: nil db")
	}
	if summary.ID == "" {
		return errors.New("dataset repo: empty build id")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO dataset_builds (
	id, kind, window_key, rows_total, records_total, dropped,
	current_issues, voltage_issues, anomalies, voltage_thd, seed,
	started_at, finished_at
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8, $9, $10, $11,
	$12, $13
)
ON CONFLICT (id)
DO UPDATE SET
	rows_total = EXCLUDED.rows_total,
	records_total = EXCLUDED.records_total,
	dropped = EXCLUDED.dropped,
	current_issues = EXCLUDED.current_issues,
	voltage_issues = EXCLUDED.voltage_issues,
	anomalies = EXCLUDED.anomalies,
	voltage_thd = EXCLUDED.voltage_thd,
	finished_at = EXCLUDED.finished_at`,
		summary.ID, string(summary.Kind), summary.Window, summary.Rows, summary.Records, summary.Dropped,
		summary.CurrentIssues, summary.VoltageIssues, summary.Anomalies, summary.VoltageTHD, int64(summary.Seed),
		summary.StartedAt, finishedAt(summary))
	return err
}

// SaveProcessedRows replaces the processed rows of a build in one transaction.
func (r *Repository) SaveProcessedRows(ctx context.Context, buildID string, rows []dataset.ProcessedRow) error {
	if r == nil || r.db == nil {
		return errors.New("dataset repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dataset_processed_rows WHERE build_id = $1`, buildID); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO dataset_processed_rows (
	build_id, row_index, current_value, current_issue,
	voltage_value, voltage_issue, active_power, frequency
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, buildID, i, row.Current, row.CurrentIssue,
			row.Voltage, row.VoltageIssue, row.ActivePower, row.Frequency); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SaveSyntheticRows inserts records numbered from offset.
func (r *Repository) SaveSyntheticRows(ctx context.Context, buildID string, offset int, records []dataset.SyntheticRecord) error {
	if r == nil || r.db == nil {
		return errors.New("dataset repo: nil db")
	}
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO dataset_synthetic_rows (
	build_id, row_index, ts, voltage_l1, current_l1,
	active_power_l1, thd_voltage_l1, frequency, target
) VALUES (
	$1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9
)
ON CONFLICT (build_id, row_index) DO NOTHING`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err := stmt.ExecContext(ctx, buildID, offset+i, record.Time, record.VoltageL1, record.CurrentL1,
			record.ActivePower, record.THDVoltage, record.Frequency, record.Target); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// DeleteBuild removes a build; its rows go with it through ON DELETE CASCADE.
func (r *Repository) DeleteBuild(ctx context.Context, buildID string) error {
	if r == nil || r.db == nil {
		return errors.New("dataset repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM dataset_builds WHERE id = $1", buildID)
	return err
}

func finishedAt(summary dataset.BuildSummary) interface{} {
	if summary.FinishedAt.IsZero() {
		return nil
	}
	return summary.FinishedAt
}
