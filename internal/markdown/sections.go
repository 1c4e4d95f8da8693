package markdown

import (
	"regexp"
	"strings"

	"github.com/starford/lesa/internal/models"
)

// maxHeadingLevel is the deepest heading that starts a new section.
// #### and beyond are plain content of the enclosing section.
const maxHeadingLevel = 3

const fenceMarker = "```"

// introID and introTitle name the pseudo-section for content that appears
// before the first qualifying heading.
const (
	introID    = "introduction"
	introTitle = "Introduction"
)

// headingPatterns are tested deepest-first so that an exact-count pattern
// can never be shadowed by a shallower one.
var headingPatterns = []struct {
	level int
	re    *regexp.Regexp
}{
	{3, regexp.MustCompile(`^###\s+(.+)$`)},
	{2, regexp.MustCompile(`^##\s+(.+)$`)},
	{1, regexp.MustCompile(`^#\s+(.+)$`)},
}

// ParseSections walks body line by line and emits sections in document
// order. Heading lines open a new section; lines inside a code fence are
// never interpreted as headings; content before the first heading becomes
// an Introduction pseudo-section at level 0. Word counts are computed once
// per section over its final content.
func ParseSections(body string) []models.Section {
	lines := strings.Split(body, "\n")
	// A trailing newline yields one empty trailing element; dropping it
	// keeps the concatenated section contents equal to the body.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var sections []models.Section
	var current *models.Section
	var intro strings.Builder
	inCodeBlock := false

	appendLine := func(line string) {
		if current != nil {
			current.Content += line + "\n"
		} else {
			intro.WriteString(line + "\n")
		}
	}

	flushIntro := func() {
		if strings.TrimSpace(intro.String()) == "" {
			return
		}
		sections = append(sections, models.Section{
			ID:      introID,
			Title:   introTitle,
			Content: intro.String(),
			Level:   0,
		})
		intro.Reset()
	}

	for _, line := range lines {
		// Fence markers toggle code-block state and are always content,
		// never candidate headings.
		if strings.HasPrefix(strings.TrimSpace(line), fenceMarker) {
			inCodeBlock = !inCodeBlock
			appendLine(line)
			continue
		}
		if inCodeBlock {
			appendLine(line)
			continue
		}

		matched := false
		for _, p := range headingPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if current != nil {
				sections = append(sections, *current)
			} else {
				flushIntro()
			}
			title := strings.TrimSpace(m[1])
			current = &models.Section{
				ID:      Slugify(title),
				Title:   title,
				Content: strings.Repeat("#", p.level) + " " + title + "\n",
				Level:   p.level,
			}
			matched = true
			break
		}
		if !matched {
			appendLine(line)
		}
	}

	if current != nil {
		sections = append(sections, *current)
	} else {
		flushIntro()
	}

	// Deliberate second pass: counting over the final accumulated content
	// is correct no matter how many lines were appended after creation.
	for i := range sections {
		sections[i].WordCount = CountWords(sections[i].Content)
	}

	return sections
}
