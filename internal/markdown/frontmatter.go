package markdown

import (
	"log/slog"
	"regexp"

	"gopkg.in/yaml.v3"
)

// frontmatterRe matches a ----delimited YAML block anchored at the very
// start of the document, including its closing delimiter line. The closing
// line must contain exactly three dashes, so it either ends in a newline or
// ends the input; anything longer (----, a setext underline) is body.
var frontmatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---(\r?\n|\z)`)

// ExtractFrontmatter separates a leading YAML frontmatter block from the
// body. When no block is present the input is returned unchanged with nil
// metadata. When the block exists but is not valid YAML, the error is
// logged and the entire input is preserved as body — a malformed header
// must never cost the caller their document.
func ExtractFrontmatter(raw string) (string, map[string]interface{}) {
	m := frontmatterRe.FindStringSubmatch(raw)
	if m == nil {
		return raw, nil
	}

	var meta map[string]interface{}
	if err := yaml.Unmarshal([]byte(m[1]), &meta); err != nil {
		slog.Warn("markdown: frontmatter parse failed", slog.String("error", err.Error()))
		return raw, nil
	}

	body := raw[len(m[0]):]
	if len(meta) == 0 {
		return body, nil
	}
	return body, meta
}
