// Package parser extracts YAML frontmatter metadata and body text from
// Markdown entity files.
package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Meta is the frontmatter schema shared by all entity types. Absent fields
// stay at their zero value; consumers decide which fields are required.
type Meta struct {
	ID       string   `yaml:"id"`
	Type     string   `yaml:"type"`
	Title    string   `yaml:"title"`
	Tags     []string `yaml:"tags"`
	Triggers []string `yaml:"triggers"`
	Status   string   `yaml:"status"`
	Quality  string   `yaml:"quality"`
	DocType  string   `yaml:"doc_type"`
	Date     string   `yaml:"date"`
	Summary3 string   `yaml:"summary_3"`
	Summary1 string   `yaml:"summary_1"`
}

// Result holds the output of parsing a Markdown entity file.
type Result struct {
	Meta  Meta
	Body  string
	Title string
}

// Parse extracts frontmatter metadata, body, and a display title from raw
// Markdown bytes. Files without frontmatter parse to a zero Meta.
func Parse(data []byte) (*Result, error) {
	meta, body := splitFrontmatter(data)
	title := deriveTitle(meta.Title, body)

	return &Result{
		Meta:  meta,
		Body:  body,
		Title: title,
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found, or the YAML does not
// decode, the entire content is body.
func splitFrontmatter(data []byte) (Meta, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return Meta{}, string(data)
	}

	// Find end delimiter.
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter; treat everything as body.
		return Meta{}, string(data)
	}

	yamlBlock := rest[:idx]
	// Body starts after the closing delimiter line.
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var meta Meta
	if err := yaml.Unmarshal(yamlBlock, &meta); err != nil {
		// Invalid YAML: the loader will reject the file for its missing
		// required fields, so return body only.
		return Meta{}, string(data)
	}

	return meta, body
}

// deriveTitle returns the frontmatter title if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fmTitle, body string) string {
	if fmTitle != "" {
		return fmTitle
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// Excerpt produces a short plain-text preview of a Markdown body: leading
// headings and blank lines are dropped, whitespace is collapsed, and the
// result is truncated to roughly limit characters with an ellipsis.
func Excerpt(body string, limit int) string {
	lines := strings.Split(body, "\n")

	start := 0
	for start < len(lines) {
		trimmed := strings.TrimSpace(lines[start])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			start++
			continue
		}
		break
	}

	collapsed := strings.Join(strings.Fields(strings.Join(lines[start:], " ")), " ")
	if limit > 0 && len(collapsed) > limit {
		// Back up to a rune boundary so the cut never splits a multi-byte
		// character.
		cut := limit
		for cut > 0 && !utf8.RuneStart(collapsed[cut]) {
			cut--
		}
		collapsed = strings.TrimRight(collapsed[:cut], " ") + "..."
	}
	return collapsed
}
