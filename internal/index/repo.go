package index

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/lesa/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path      string
	Title     string
	Checksum  string
	Tags      []string
	WordCount int
	UpdatedAt time.Time
}

// SearchResult represents one search hit: a section within a document.
type SearchResult struct {
	Path      string
	SectionID string
	Title     string
	Snippet   string
}

// OutlineEntry is one document with its section headings, in document order.
type OutlineEntry struct {
	Path     string
	Title    string
	Sections []OutlineSection
}

// OutlineSection is a single heading in the outline.
type OutlineSection struct {
	ID        string
	Title     string
	Level     int
	WordCount int
}

// UpsertDocument inserts or replaces a document, its sections, and its FTS
// entries within a transaction.
func (db *DB) UpsertDocument(d DocumentRow, sections []models.Section) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(d.Tags)

	_, err = tx.Exec(`
		INSERT INTO documents (path, title, checksum, tags, word_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			word_count = excluded.word_count,
			updated_at = excluded.updated_at
	`, d.Path, d.Title, d.Checksum, string(tagsJSON), d.WordCount, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// Replace sections: delete old then bulk insert in document order.
	_, _ = tx.Exec(`DELETE FROM sections WHERE path = ?`, d.Path)
	if len(sections) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO sections (path, position, section_id, title, level, word_count, content)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare section insert: %w", err)
		}
		defer stmt.Close()
		for i, s := range sections {
			if _, err := stmt.Exec(d.Path, i, s.ID, s.Title, s.Level, s.WordCount, s.Content); err != nil {
				return fmt.Errorf("index: insert section: %w", err)
			}
		}
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, d.Path, sections); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its sections, its FTS entries, and its
// reading progress.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM sections WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM reading_progress WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string
// if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetSections returns the stored sections of a document in document order.
func (db *DB) GetSections(path string) ([]models.Section, error) {
	rows, err := db.conn.Query(`
		SELECT section_id, title, level, word_count, content
		FROM sections
		WHERE path = ?
		ORDER BY position
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: get sections: %w", err)
	}
	defer rows.Close()

	var out []models.Section
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.Title, &s.Level, &s.WordCount, &s.Content); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListDocuments returns paginated documents with optional tag filter.
// sort is one of updated_at (default), title, path.
func (db *DB) ListDocuments(limit, offset int, tag, sort string) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	orderBy := "updated_at DESC"
	switch sort {
	case "title":
		orderBy = "title ASC"
	case "path":
		orderBy = "path ASC"
	}

	where := ""
	args := []any{}
	if tag != "" {
		// Tags are stored as a JSON string array; match the quoted element.
		where = `WHERE tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT path, title, checksum, tags, word_count, updated_at
		FROM documents %s
		ORDER BY %s
		LIMIT ? OFFSET ?
	`, where, orderBy)
	args = append(args, limit, offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		var tagsJSON string
		if err := rows.Scan(&d.Path, &d.Title, &d.Checksum, &tagsJSON, &d.WordCount, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &d.Tags)
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Outline returns every document with its section headings, ordered by path
// and section position.
func (db *DB) Outline() ([]OutlineEntry, error) {
	rows, err := db.conn.Query(`
		SELECT d.path, d.title, s.section_id, s.title, s.level, s.word_count
		FROM documents d
		LEFT JOIN sections s ON s.path = d.path
		ORDER BY d.path, s.position
	`)
	if err != nil {
		return nil, fmt.Errorf("index: outline: %w", err)
	}
	defer rows.Close()

	var out []OutlineEntry
	var current *OutlineEntry
	for rows.Next() {
		var path, docTitle string
		var sectionID, sectionTitle *string
		var level, wordCount *int
		if err := rows.Scan(&path, &docTitle, &sectionID, &sectionTitle, &level, &wordCount); err != nil {
			return nil, err
		}
		if current == nil || current.Path != path {
			out = append(out, OutlineEntry{Path: path, Title: docTitle})
			current = &out[len(out)-1]
		}
		if sectionID != nil {
			current.Sections = append(current.Sections, OutlineSection{
				ID:        *sectionID,
				Title:     *sectionTitle,
				Level:     *level,
				WordCount: *wordCount,
			})
		}
	}
	return out, rows.Err()
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns a path → checksum map for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
