package markdown

import (
	"regexp"
	"strings"
)

// Stripping order matters: code is removed first so its content can never
// leak into a prose word count, and images before links so the image alt
// syntax is not half-consumed by the link rule.
var (
	fencedCodeRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`]*`")
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	imageRe      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	boldRe       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	boldAltRe    = regexp.MustCompile(`__(.*?)__`)
	italicRe     = regexp.MustCompile(`\*(.*?)\*`)
	italicAltRe  = regexp.MustCompile(`_(.*?)_`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
)

// StripMarkdown removes Markdown syntax from text, leaving plain prose.
// Link and emphasis text survives; code, image syntax, and HTML tags do not.
func StripMarkdown(text string) string {
	text = fencedCodeRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "")
	text = headingRe.ReplaceAllString(text, "")
	text = imageRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	text = boldRe.ReplaceAllString(text, "$1")
	text = boldAltRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = italicAltRe.ReplaceAllString(text, "$1")
	text = htmlTagRe.ReplaceAllString(text, "")
	return text
}

// CountWords strips Markdown syntax and counts whitespace-separated tokens.
// Empty input counts zero.
func CountWords(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(StripMarkdown(text)))
}
