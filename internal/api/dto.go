package api

import (
	"github.com/starford/lesa/internal/docservice"
	"github.com/starford/lesa/internal/index"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"guides/setup.md" validate:"required"`
	Content string `json:"content" example:"# Setup\nSteps here" validate:"required"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content" example:"# Setup\nUpdated steps" validate:"required"`
}

// ProgressReportRequest is the request body for reporting reading time.
type ProgressReportRequest struct {
	TimeSpentMs int64 `json:"time_spent_ms" example:"30000" validate:"required"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = docservice.DocumentListItem

// Progress is the reading-progress response type (aliased from the domain layer).
type Progress = docservice.Progress

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single section hit in the API response.
type SearchResult struct {
	Path      string `json:"path" example:"guides/setup.md" validate:"required"`
	SectionID string `json:"section_id" example:"installation" validate:"required"`
	Title     string `json:"title" example:"Installation" validate:"required"`
	Snippet   string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// OutlineSection is a single heading in an outline response.
type OutlineSection struct {
	ID        string `json:"id" example:"installation"`
	Title     string `json:"title" example:"Installation"`
	Level     int    `json:"level" example:"2"`
	WordCount int    `json:"word_count" example:"120"`
}

// OutlineDocument is one document with its headings in document order.
type OutlineDocument struct {
	Path     string           `json:"path" example:"guides/setup.md"`
	Title    string           `json:"title" example:"Setup"`
	Sections []OutlineSection `json:"sections"`
}

// OutlineResponse wraps the library outline.
type OutlineResponse struct {
	Documents []OutlineDocument `json:"documents" validate:"required"`
}

// ImportResponse is returned after a successful document import.
type ImportResponse struct {
	Filename string          `json:"filename" example:"setup.md" validate:"required"`
	Size     int64           `json:"size" example:"12345" validate:"required"`
	Document *DocumentDetail `json:"document" validate:"required"`
}

func toSearchResults(rows []index.SearchResult) []SearchResult {
	out := make([]SearchResult, len(rows))
	for i, r := range rows {
		out[i] = SearchResult{
			Path:      r.Path,
			SectionID: r.SectionID,
			Title:     r.Title,
			Snippet:   r.Snippet,
		}
	}
	return out
}

func toOutlineDocuments(entries []index.OutlineEntry) []OutlineDocument {
	out := make([]OutlineDocument, len(entries))
	for i, e := range entries {
		sections := make([]OutlineSection, len(e.Sections))
		for j, s := range e.Sections {
			sections[j] = OutlineSection{
				ID:        s.ID,
				Title:     s.Title,
				Level:     s.Level,
				WordCount: s.WordCount,
			}
		}
		out[i] = OutlineDocument{Path: e.Path, Title: e.Title, Sections: sections}
	}
	return out
}
