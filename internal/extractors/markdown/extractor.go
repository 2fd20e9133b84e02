// Package markdown splits the markdown FAQ document into one document
// per "## Question" section.
package markdown

import (
	"regexp"
	"strings"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
)

// section is one heading plus its answer body, collected while scanning.
type section struct {
	heading string
	body    []string
}

// Extract splits a markdown document on "## " heading boundaries into
// one document per section. The ID is the slugified heading. Sections
// with an empty body are dropped, and a document with no recognisable
// headings yields zero documents - neither case is an error.
func Extract(content string) []domain.Document {
	var sections []section
	var current *section
	inFence := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		// Heading markers inside code fences are literal text.
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(trimmed, "## ") {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &section{heading: strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))}
			continue
		}
		if current != nil {
			current.body = append(current.body, line)
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}

	docs := make([]domain.Document, 0, len(sections))
	seen := make(map[string]bool, len(sections))

	for _, sec := range sections {
		id := Slugify(sec.heading)
		if id == "" || seen[id] {
			continue
		}

		body := Strip(strings.Join(sec.body, "\n"))
		if body == "" {
			continue
		}
		seen[id] = true

		docs = append(docs, domain.Document{
			ID:    id,
			Title: sec.heading,
			URL:   "#faq-" + id,
			Text:  collapseWhitespace(sec.heading + " " + body),
			Kind:  domain.SourceFAQMarkdown,
		})
	}

	return docs
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashes  = regexp.MustCompile(`-{2,}`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Slugify converts a heading into a stable lowercase identifier.
func Slugify(heading string) string {
	slug := strings.ToLower(strings.TrimSpace(heading))
	slug = slugInvalid.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// collapseWhitespace folds all whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Pre-compiled regular expressions for markdown stripping.
var (
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`[^`]+`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	horizRule    = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
)

// Strip removes common markdown formatting for plain text content.
// This is a simplified implementation that handles common cases.
func Strip(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")

	// Keep link text, drop the target.
	content = links.ReplaceAllString(content, "$1")

	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = horizRule.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	return strings.TrimSpace(content)
}
