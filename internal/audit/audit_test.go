package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestLogWriter_Log(t *testing.T) {
	var lines []string
	writer := NewLogWriter(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})
	metadata := json.RawMessage(`{"window":"20240101T00"}`)
	err := writer.Log(context.Background(), Entry{
		Actor:        "user-1",
		Role:         "admin",
		Action:       ActionBuildProcessed,
		ResourceType: "dataset_build",
		ResourceID:   "processed-abc",
		Outcome:      "success",
		Metadata:     metadata,
	})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(lines) != 1 || !strings.Contains(lines[0], "dataset.build_processed actor=user-1") {
		t.Fatalf("lines = %v", lines)
	}
	if !strings.Contains(lines[0], DigestJSON(metadata)) {
		t.Fatalf("digest missing from %q", lines[0])
	}
}

func TestDigestAndID(t *testing.T) {
	if DigestJSON(nil) != "" {
		t.Fatalf("empty payload should have no digest")
	}
	if len(DigestJSON([]byte("{}"))) != 64 {
		t.Fatalf("digest should be hex sha256")
	}
	if a, b := NewID(), NewID(); a == b || !strings.HasPrefix(a, "audit-") {
		t.Fatalf("ids = %q %q", a, b)
	}
}

func TestRepository_LogPostgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var exists bool
	if err := db.QueryRow(`SELECT to_regclass('audit_logs') IS NOT NULL`).Scan(&exists); err != nil || !exists {
		t.Skip("audit_logs table not migrated")
	}

	entry := Entry{ID: NewID(), Actor: "user-1", Role: "admin", Action: ActionBuildSynthetic, ResourceType: "dataset_build", ResourceID: "synthetic-1", Outcome: "success"}
	if err := NewRepository(db).Log(context.Background(), entry); err != nil {
		t.Fatalf("log: %v", err)
	}
	var action string
	if err := db.QueryRow(`SELECT action FROM audit_logs WHERE id = $1`, entry.ID).Scan(&action); err != nil {
		t.Fatalf("select: %v", err)
	}
	if action != ActionBuildSynthetic {
		t.Fatalf("action = %q", action)
	}
	_, _ = db.Exec(`DELETE FROM audit_logs WHERE id = $1`, entry.ID)
}
