package markdown

import (
	"regexp"
	"strings"
)

var (
	slugDropRe     = regexp.MustCompile(`[^\w\s-]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe anchor id from a heading title: lowercase,
// punctuation dropped, whitespace runs collapsed to single hyphens.
// Deterministic, with no uniqueness guarantee — two identical titles in one
// document produce identical ids, and callers needing unique anchors must
// disambiguate themselves.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugDropRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
