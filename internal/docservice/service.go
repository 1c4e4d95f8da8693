// Package docservice coordinates storage, index, and the section engine.
package docservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/lesa/internal/apperr"
	"github.com/starford/lesa/internal/checksum"
	"github.com/starford/lesa/internal/index"
	"github.com/starford/lesa/internal/markdown"
	"github.com/starford/lesa/internal/models"
	"github.com/starford/lesa/internal/storage"
)

// DocumentDetail is the full representation of a document: its sections in
// document order plus frontmatter metadata and reading estimates.
type DocumentDetail struct {
	Path          string           `json:"path"`
	Title         string           `json:"title"`
	Checksum      string           `json:"checksum"`
	Tags          []string         `json:"tags"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
	Sections      []models.Section `json:"sections"`
	WordCount     int              `json:"word_count"`
	ReadingTimeMs int64            `json:"reading_time_ms"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path          string    `json:"path"`
	Title         string    `json:"title"`
	Checksum      string    `json:"checksum"`
	Tags          []string  `json:"tags"`
	WordCount     int       `json:"word_count"`
	ReadingTimeMs int64     `json:"reading_time_ms"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Progress reports how far through a document a reader is.
type Progress struct {
	Path          string    `json:"path"`
	SessionID     string    `json:"session_id,omitempty"`
	TimeSpentMs   int64     `json:"time_spent_ms"`
	Percent       int       `json:"percent"`
	WordsRead     int       `json:"words_read"`
	WordCount     int       `json:"word_count"`
	ReadingTimeMs int64     `json:"reading_time_ms"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
	wpm   int
}

// NewService creates a new document service. wpm is the configured reading
// speed used for all time estimates; non-positive falls back to the engine
// default.
func NewService(store storage.Provider, db *index.DB, wpm int) *Service {
	if wpm <= 0 {
		wpm = markdown.DefaultWPM
	}
	return &Service{store: store, db: db, wpm: wpm}
}

// WPM returns the configured reading speed.
func (s *Service) WPM() int {
	return s.wpm
}

// GetDocument reads a document from storage and parses it into sections.
func (s *Service) GetDocument(_ context.Context, path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(path, data), nil
}

// GetSection returns a single section of a document by id. When duplicate
// headings share an id, the first match in document order wins.
func (s *Service) GetSection(ctx context.Context, path, sectionID string) (*models.Section, error) {
	detail, err := s.GetDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	for i := range detail.Sections {
		if detail.Sections[i].ID == sectionID {
			return &detail.Sections[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

// CreateDocument writes a new document and indexes it.
func (s *Service) CreateDocument(_ context.Context, path string, content []byte) (*DocumentDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content), nil
}

// UpdateDocument writes updated content with optimistic concurrency.
func (s *Service) UpdateDocument(_ context.Context, path string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content), nil
}

// DeleteDocument removes a document from storage and index.
func (s *Service) DeleteDocument(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteDocument(path)
}

// ListDocuments returns paginated documents with optional tag filter.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, tag, sort string) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:          r.Path,
			Title:         r.Title,
			Checksum:      r.Checksum,
			Tags:          nonNilSlice(r.Tags),
			WordCount:     r.WordCount,
			ReadingTimeMs: markdown.EstimateReadingTime(r.WordCount, s.wpm),
			UpdatedAt:     r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search over sections to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Outline returns every document with its section headings.
func (s *Service) Outline(_ context.Context) ([]index.OutlineEntry, error) {
	return s.db.Outline()
}

// RecordProgress accumulates elapsed reading time for a document and
// returns the updated estimate.
func (s *Service) RecordProgress(ctx context.Context, path string, deltaMs int64) (*Progress, error) {
	detail, err := s.GetDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	row, err := s.db.AddReadingTime(path, deltaMs)
	if err != nil {
		return nil, err
	}
	return s.buildProgress(detail, row), nil
}

// GetProgress returns the current reading estimate for a document without
// mutating it.
func (s *Service) GetProgress(ctx context.Context, path string) (*Progress, error) {
	detail, err := s.GetDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	row, err := s.db.GetProgress(path)
	if err != nil {
		return nil, err
	}
	return s.buildProgress(detail, row), nil
}

// IndexFile parses data and upserts it into the index.
// Exported so that callers re-indexing outside the CRUD path can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	doc := markdown.Parse(data)
	return s.db.UpsertDocument(index.DocumentRow{
		Path:      path,
		Title:     doc.Title,
		Checksum:  checksum.Sum(data),
		Tags:      nonNilSlice(doc.Tags()),
		WordCount: doc.WordCount(),
		UpdatedAt: time.Now(),
	}, doc.Sections)
}

func (s *Service) buildDetail(path string, data []byte) *DocumentDetail {
	doc := markdown.Parse(data)
	wc := doc.WordCount()
	return &DocumentDetail{
		Path:          path,
		Title:         doc.Title,
		Checksum:      checksum.Sum(data),
		Tags:          nonNilSlice(doc.Tags()),
		Metadata:      doc.Metadata,
		Sections:      nonNilSlice(doc.Sections),
		WordCount:     wc,
		ReadingTimeMs: markdown.EstimateReadingTime(wc, s.wpm),
		UpdatedAt:     time.Now(),
	}
}

func (s *Service) buildProgress(detail *DocumentDetail, row index.ProgressRow) *Progress {
	wordsRead := markdown.EstimateWordsRead(row.TimeSpentMs, s.wpm)
	if wordsRead > detail.WordCount {
		wordsRead = detail.WordCount
	}
	return &Progress{
		Path:          detail.Path,
		SessionID:     row.SessionID,
		TimeSpentMs:   row.TimeSpentMs,
		Percent:       markdown.EstimateReadingProgress(detail.WordCount, row.TimeSpentMs, s.wpm),
		WordsRead:     wordsRead,
		WordCount:     detail.WordCount,
		ReadingTimeMs: detail.ReadingTimeMs,
		UpdatedAt:     row.UpdatedAt,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
