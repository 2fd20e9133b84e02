package driven

import (
	"context"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
)

// IndexStore holds the current document set and its derived term
// statistics. Lifetime is the process lifetime: the index is rebuilt
// fresh on restart, there is no persistence.
type IndexStore interface {
	// Upsert inserts or replaces a document by ID. Term statistics for
	// that document are recomputed before the next Snapshot returns.
	Upsert(ctx context.Context, doc *domain.Document) error

	// Snapshot returns an immutable view of all indexed documents for
	// scoring. It reflects every upsert completed before the call, and
	// no two entries share an ID.
	Snapshot(ctx context.Context) ([]IndexedDocument, error)

	// Len returns the number of indexed documents.
	Len(ctx context.Context) (int, error)
}

// IndexedDocument is a document together with the term statistics the
// retriever scores against. The term maps are written once at upsert
// and never mutated afterwards, so snapshots may share them.
type IndexedDocument struct {
	// Document is the indexed document.
	Document domain.Document

	// TermFreq maps each body token to its occurrence count.
	TermFreq map[string]int

	// Length is the total body token count.
	Length int

	// TitleTerms is the set of tokens in the title.
	TitleTerms map[string]bool

	// TagTerms is the set of tokens across all tags.
	TagTerms map[string]bool
}
