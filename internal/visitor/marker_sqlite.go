package visitor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteMarker stores one row per notified session. Only the session id and
// the time it was marked are kept.
type SQLiteMarker struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQLiteMarker opens (or creates) the database at path.
func OpenSQLiteMarker(path string, ttl time.Duration) (*SQLiteMarker, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// sqlite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	m := &SQLiteMarker{db: db, ttl: ttl, now: time.Now}
	if err := m.init(); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

func (m *SQLiteMarker) init() error {
	_, err := m.db.Exec(`
	CREATE TABLE IF NOT EXISTS visitor_sessions (
		session_id TEXT PRIMARY KEY,
		sent_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create visitor_sessions table: %w", err)
	}
	return nil
}

func (m *SQLiteMarker) MarkSent(ctx context.Context, session string) (bool, error) {
	now := m.now()
	cutoff := now.Add(-m.ttl).Unix()

	// Inserts a new marker, or revives an expired one. A live marker is
	// left alone and affects no rows.
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO visitor_sessions (session_id, sent_at) VALUES (?, ?)
		ON CONFLICT(session_id) DO UPDATE SET sent_at = excluded.sent_at
		WHERE visitor_sessions.sent_at <= ?
	`, session, now.Unix(), cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to set visitor marker: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read marker result: %w", err)
	}
	return n == 1, nil
}

// Purge deletes markers older than the session ttl.
func (m *SQLiteMarker) Purge(ctx context.Context) (int64, error) {
	cutoff := m.now().Add(-m.ttl).Unix()

	result, err := m.db.ExecContext(ctx, `DELETE FROM visitor_sessions WHERE sent_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge visitor markers: %w", err)
	}
	return result.RowsAffected()
}

func (m *SQLiteMarker) Close() error {
	return m.db.Close()
}
