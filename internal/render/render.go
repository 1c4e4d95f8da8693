// Package render converts section Markdown to HTML for API consumers that
// ask for a rendered representation.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer wraps a configured goldmark engine. It is stateless and safe for
// concurrent use; construct one and share it.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a renderer with GFM extensions and auto heading ids, so
// rendered headings carry the same anchor style the section engine emits.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// HTML renders Markdown source to HTML.
func (r *Renderer) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}
