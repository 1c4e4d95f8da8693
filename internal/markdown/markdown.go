// Package markdown splits Markdown documents into navigable sections keyed
// by heading structure, and provides word-count and reading-time helpers.
//
// Everything in this package is a pure function over its input: no caching,
// no shared state, safe to call concurrently. Callers re-run Parse on every
// content change rather than patching a previous result.
package markdown

import (
	"strings"

	"github.com/starford/lesa/internal/models"
)

// Document holds the output of parsing a Markdown file.
type Document struct {
	Sections []models.Section
	Metadata map[string]interface{}
	Body     string
	Title    string
}

// Parse extracts frontmatter from raw Markdown bytes and segments the
// remaining body into sections. It never fails: malformed frontmatter is
// logged and treated as body, and any string input produces a valid
// (possibly empty) section list.
func Parse(data []byte) *Document {
	body, meta := ExtractFrontmatter(string(data))
	sections := ParseSections(body)

	return &Document{
		Sections: sections,
		Metadata: meta,
		Body:     body,
		Title:    deriveTitle(meta, sections),
	}
}

// WordCount returns the total word count across all sections.
func (d *Document) WordCount() int {
	total := 0
	for _, s := range d.Sections {
		total += s.WordCount
	}
	return total
}

// Tags returns the frontmatter "tags" list, if any. Values that are not
// strings are skipped.
func (d *Document) Tags() []string {
	if d.Metadata == nil {
		return nil
	}
	raw, ok := d.Metadata["tags"].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the
// first level-1 section heading, otherwise empty string.
func deriveTitle(meta map[string]interface{}, sections []models.Section) string {
	if meta != nil {
		if t, ok := meta["title"]; ok {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	for _, s := range sections {
		if s.Level == 1 {
			return s.Title
		}
	}
	return ""
}
