// Package faqsource provides the FAQ content behind the chat index: a
// compiled-in set of structured entries, optionally overridden from a TOML
// file, plus the long-form FAQ markdown document read from disk.
package faqsource

import (
	"context"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.FAQSource = (*Source)(nil)

// entriesFile is the TOML shape of an entries override file.
type entriesFile struct {
	Entries []domain.FAQEntry `toml:"entries"`
}

// Source serves FAQ entries and the FAQ markdown document.
type Source struct {
	entriesPath  string
	markdownPath string
}

// NewSource creates a source. entriesPath overrides the compiled-in entries
// when non-empty; markdownPath points at the FAQ markdown document, empty
// meaning none is configured.
func NewSource(entriesPath, markdownPath string) *Source {
	return &Source{
		entriesPath:  entriesPath,
		markdownPath: markdownPath,
	}
}

// Entries returns the structured FAQ records. With no override file
// configured it returns the compiled-in defaults.
func (s *Source) Entries(context.Context) ([]domain.FAQEntry, error) {
	if s.entriesPath == "" {
		return DefaultEntries(), nil
	}

	data, err := os.ReadFile(s.entriesPath)
	if err != nil {
		return nil, fmt.Errorf("read faq entries: %w", err)
	}

	var file entriesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse faq entries: %w", err)
	}
	return file.Entries, nil
}

// MarkdownDoc returns the FAQ markdown document, or an empty string when no
// path is configured.
func (s *Source) MarkdownDoc(context.Context) (string, error) {
	if s.markdownPath == "" {
		return "", nil
	}

	data, err := os.ReadFile(s.markdownPath)
	if err != nil {
		return "", fmt.Errorf("read faq markdown: %w", err)
	}
	return string(data), nil
}

// DefaultEntries is the compiled-in FAQ set used when no override file is
// configured.
func DefaultEntries() []domain.FAQEntry {
	return []domain.FAQEntry{
		{
			ID:       "what-is-this-site",
			Question: "What is this site?",
			Answer:   "A personal site with my writing, projects, and a chat box that answers questions about the content here.",
			Tags:     []string{"about"},
		},
		{
			ID:       "how-does-chat-work",
			Question: "How does the chat work?",
			Answer:   "Your question is matched against an index of the site's pages and FAQ answers; the best matches come back as sources.",
			Tags:     []string{"chat", "search"},
		},
		{
			ID:       "contact",
			Question: "How can I get in touch?",
			Answer:   "Use the contact page or the email address in the footer.",
			Tags:     []string{"contact"},
		},
	}
}
