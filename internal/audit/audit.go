// Package audit records which operations ran, for whom and with what
// outcome. Contract text, chat content and audio are never stored.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type Auditor struct {
	db     *sql.DB
	logger *zap.Logger
}

// Entry is one audited operation.
type Entry struct {
	ID        int64         `json:"id"`
	Operation string        `json:"operation"`
	Session   string        `json:"session,omitempty"`
	Outcome   string        `json:"outcome"`
	Detail    string        `json:"detail,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// OutcomeOK marks a successful operation. Failures use the error kind.
const OutcomeOK = "ok"

// Open opens (or creates) the audit database at path. ":memory:" keeps the
// log in memory.
func Open(path string, logger *zap.Logger) (*Auditor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit DB: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		operation TEXT NOT NULL,
		session TEXT,
		outcome TEXT NOT NULL,
		detail TEXT,
		duration_ms INTEGER,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit table: %w", err)
	}
	return &Auditor{db: db, logger: logger.Named("audit")}, nil
}

// Log writes an entry. Failures are logged, never returned, so auditing
// cannot break the operation being audited. A nil Auditor is a no-op.
func (a *Auditor) Log(ctx context.Context, e Entry) {
	if a == nil || a.db == nil {
		return
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeOK
	}
	_, err := a.db.ExecContext(ctx,
		"INSERT INTO audit_log (operation, session, outcome, detail, duration_ms) VALUES (?, ?, ?, ?, ?)",
		e.Operation, e.Session, e.Outcome, e.Detail, e.Duration.Milliseconds(),
	)
	if err != nil {
		a.logger.Warn("failed to write audit log", zap.String("operation", e.Operation), zap.Error(err))
	}
}

// Entries returns the most recent entries, newest first.
func (a *Auditor) Entries(ctx context.Context, limit int) ([]Entry, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	rows, err := a.db.QueryContext(ctx,
		"SELECT id, operation, session, outcome, detail, duration_ms, timestamp FROM audit_log ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			session sql.NullString
			detail  sql.NullString
			ms      int64
		)
		if err := rows.Scan(&e.ID, &e.Operation, &session, &e.Outcome, &detail, &ms, &e.Timestamp); err != nil {
			continue
		}
		e.Session = session.String
		e.Detail = detail.String
		e.Duration = time.Duration(ms) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (a *Auditor) Close() {
	if a != nil && a.db != nil {
		a.db.Close()
	}
}
