package index

import "github.com/starford/lesa/internal/models"

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow, sections []models.Section) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	GetSections(path string) ([]models.Section, error)
	ListDocuments(limit, offset int, tag, sort string) ([]DocumentRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Outline() ([]OutlineEntry, error)
	AddReadingTime(path string, deltaMs int64) (ProgressRow, error)
	GetProgress(path string) (ProgressRow, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
