package driven

import (
	"context"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
)

// FAQSource supplies the FAQ inputs. Both are static from the store's
// point of view: no network fetch is required for either.
type FAQSource interface {
	// Entries returns the structured FAQ records.
	Entries(ctx context.Context) ([]domain.FAQEntry, error)

	// MarkdownDoc returns the markdown FAQ document content.
	// An empty string with nil error means no markdown FAQ is configured.
	MarkdownDoc(ctx context.Context) (string, error)
}
