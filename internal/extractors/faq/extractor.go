// Package faq turns structured FAQ records into indexable documents.
package faq

import (
	"regexp"
	"strings"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
)

var whitespace = regexp.MustCompile(`\s+`)

// Extract converts FAQ records into one document each. The body is the
// question followed by the answer, and the URL is a "#faq-<id>" anchor.
// Records with an empty id or an empty body are dropped, not errors.
func Extract(entries []domain.FAQEntry) []domain.Document {
	docs := make([]domain.Document, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" || seen[id] {
			continue
		}

		text := strings.TrimSpace(whitespace.ReplaceAllString(e.Question+" "+e.Answer, " "))
		if text == "" {
			continue
		}
		seen[id] = true

		title := strings.TrimSpace(e.Question)
		if title == "" {
			title = id
		}

		docs = append(docs, domain.Document{
			ID:    id,
			Title: title,
			URL:   "#faq-" + id,
			Text:  text,
			Tags:  append([]string(nil), e.Tags...),
			Kind:  domain.SourceFAQStruct,
		})
	}

	return docs
}
