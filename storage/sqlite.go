package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"fieldops-drive/models"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

const DEFAULT_LIST_LIMIT = 50

var _ Database = (*SQLiteDB)(nil)

type SQLiteDB struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteDB(dbPath string) *SQLiteDB {
	return &SQLiteDB{
		dbPath: dbPath,
	}
}

func (s *SQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode=WAL;")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}

	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteDB) Record(ctx context.Context, entry *models.AuditEntry) error {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_entries (request_id, route, file_id, status, bytes, duration_ms, error, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		entry.Route,
		entry.FileID,
		entry.Status,
		entry.Bytes,
		entry.Duration.Milliseconds(),
		entry.Error,
		entry.OccurredAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read audit entry id: %w", err)
	}
	entry.ID = id

	return nil
}

func (s *SQLiteDB) ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = DEFAULT_LIST_LIMIT
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, route, file_id, status, bytes, duration_ms, error, occurred_at
		 FROM audit_entries
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var (
			entry      models.AuditEntry
			durationMs int64
			occurredAt int64
		)
		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.Route,
			&entry.FileID,
			&entry.Status,
			&entry.Bytes,
			&durationMs,
			&entry.Error,
			&occurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		entry.OccurredAt = time.UnixMilli(occurredAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteDB) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM audit_entries")
	if err != nil {
		return fmt.Errorf("failed to clear audit entries: %w", err)
	}
	return nil
}

// Prune deletes entries older than before and reports how many went.
func (s *SQLiteDB) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_entries WHERE occurred_at < ?", before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned audit entries: %w", err)
	}
	return n, nil
}

func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
