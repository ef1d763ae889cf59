package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository writes audit logs to Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Log writes an audit entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	entry = complete(entry)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO audit_logs (
	id, actor, role, action, resource_type, resource_id, outcome,
	metadata, payload_digest, ip, user_agent, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)`, entry.ID, entry.Actor, entry.Role, entry.Action, entry.ResourceType, entry.ResourceID, entry.Outcome,
		nullableJSON(entry.Metadata), entry.PayloadDigest, entry.IP, entry.UserAgent, entry.CreatedAt)
	return err
}

// LogWriter writes audit entries through a standard logger. Used when no database is configured.
type LogWriter struct {
	printf func(format string, args ...any)
}

// NewLogWriter constructs a LogWriter around printf, typically (*log.Logger).Printf.
func NewLogWriter(printf func(format string, args ...any)) *LogWriter {
	return &LogWriter{printf: printf}
}

// Log prints the entry.
func (w *LogWriter) Log(ctx context.Context, entry Entry) error {
	if w == nil || w.printf == nil {
		return errors.New("audit log writer: nil printf")
	}
	entry = complete(entry)
	w.printf("audit: %s actor=%s role=%s %s/%s outcome=%s digest=%s", entry.Action, entry.Actor, entry.Role,
		entry.ResourceType, entry.ResourceID, entry.Outcome, entry.PayloadDigest)
	return nil
}

func complete(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	return entry
}

func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
