// Package models defines the domain types for Lesa.
package models

import "time"

// Section is a contiguous span of a document beginning at a heading (or at
// the document start, for the Introduction) and running to just before the
// next heading of level 1-3.
type Section struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Level     int    `json:"level"`
	WordCount int    `json:"wordCount"`
}

// DocumentMetadata is a lightweight representation returned by list operations.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
