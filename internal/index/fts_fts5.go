//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/lesa/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS sections_fts USING fts5(
			path UNINDEXED,
			section_id UNINDEXED,
			title,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path string, sections []models.Section) error {
	_, _ = tx.Exec(`DELETE FROM sections_fts WHERE path = ?`, path)
	for _, s := range sections {
		_, err := tx.Exec(`INSERT INTO sections_fts (path, section_id, title, content) VALUES (?, ?, ?, ?)`,
			path, s.ID, s.Title, s.Content)
		if err != nil {
			return fmt.Errorf("index: upsert fts: %w", err)
		}
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM sections_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search over sections and returns
// matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       section_id,
		       title,
		       snippet(sections_fts, 3, '<b>', '</b>', '...', 64)
		FROM sections_fts
		WHERE sections_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.SectionID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
