package index

import (
	"log/slog"
	"time"

	"github.com/starford/lesa/internal/checksum"
	"github.com/starford/lesa/internal/markdown"
	"github.com/starford/lesa/internal/storage"
)

// Sync walks the library and brings the index up to date:
//   - new/changed files are parsed into sections and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data into sections and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) error {
	doc := markdown.Parse(data)

	row := DocumentRow{
		Path:      path,
		Title:     doc.Title,
		Checksum:  checksum.Sum(data),
		Tags:      doc.Tags(),
		WordCount: doc.WordCount(),
		UpdatedAt: time.Now(),
	}
	return db.UpsertDocument(row, doc.Sections)
}
