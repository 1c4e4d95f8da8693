package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProgressRow is the accumulated reading progress for one document.
type ProgressRow struct {
	Path        string
	SessionID   string
	TimeSpentMs int64
	UpdatedAt   time.Time
}

// AddReadingTime accumulates elapsed reading time for a document and
// returns the updated row. The session id is regenerated on each write so
// clients can detect which report won a concurrent update.
func (db *DB) AddReadingTime(path string, deltaMs int64) (ProgressRow, error) {
	if deltaMs < 0 {
		deltaMs = 0
	}
	session := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.conn.Exec(`
		INSERT INTO reading_progress (path, session_id, time_spent_ms, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			session_id    = excluded.session_id,
			time_spent_ms = reading_progress.time_spent_ms + excluded.time_spent_ms,
			updated_at    = excluded.updated_at
	`, path, session, deltaMs, now)
	if err != nil {
		return ProgressRow{}, fmt.Errorf("index: add reading time: %w", err)
	}
	return db.GetProgress(path)
}

// GetProgress returns the progress row for a document. A document that has
// never been read yields a zero row rather than an error.
func (db *DB) GetProgress(path string) (ProgressRow, error) {
	row := ProgressRow{Path: path}
	err := db.conn.QueryRow(`
		SELECT session_id, time_spent_ms, updated_at
		FROM reading_progress
		WHERE path = ?
	`, path).Scan(&row.SessionID, &row.TimeSpentMs, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return row, nil
	}
	if err != nil {
		return ProgressRow{}, fmt.Errorf("index: get progress: %w", err)
	}
	return row, nil
}
