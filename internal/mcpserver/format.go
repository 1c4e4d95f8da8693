package mcpserver

// DocumentFormat describes how Lesa documents are structured and how the
// section engine splits them, for LLM consumers reading the library.
const DocumentFormat = `# Lesa Document Format

Every document in the library is a Markdown file, optionally prefixed with
YAML frontmatter.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL - overrides the first H1 as display title
tags:                               # OPTIONAL - YAML list; used for filtering
  - tag-one
  - tag-two
---

Text before the first heading becomes an "Introduction" section.

# First Heading

Body text in standard Markdown.

## Subsection

Headings of level 1-3 start new sections. Deeper headings (#### and below)
stay inside the enclosing section.
` + "```" + `

## Sectioning rules

1. Headings of level 1, 2 and 3 each open a new section. The heading line
   itself belongs to the section it opens.
2. Content before the first heading becomes a pseudo-section titled
   "Introduction" with id ` + "`" + `introduction` + "`" + ` and level 0. It only exists when
   that content is more than whitespace.
3. Section ids are slugified headings: lowercased, punctuation dropped,
   whitespace collapsed to single hyphens (e.g. "Getting Started!" becomes
   ` + "`" + `getting-started` + "`" + `). Duplicate headings share the same id; lookups
   return the first match in document order.
4. Headings inside fenced code blocks (` + "```" + `) are treated as code, not as
   section boundaries.
5. Word counts exclude Markdown syntax: code blocks, link targets, image
   references, emphasis markers and HTML tags are stripped before counting.

## Reading estimates

- Reading time is ` + "`" + `word_count / words-per-minute` + "`" + ` with a one-minute
  minimum, reported in milliseconds.
- Progress percent is estimated from accumulated reading time against the
  document's total reading time, capped at 100.
`
