package memory

import (
	"context"
	"sync"

	"github.com/oswaldlabs/sitechat/internal/analyzer"
	"github.com/oswaldlabs/sitechat/internal/core/domain"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is the in-memory implementation of driven.IndexStore.
// Term statistics are computed eagerly at upsert so snapshots are
// ready for scoring without further work.
type IndexStore struct {
	mu        sync.RWMutex
	tokenizer *analyzer.Tokenizer
	docs      map[string]driven.IndexedDocument
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore(tokenizer *analyzer.Tokenizer) *IndexStore {
	return &IndexStore{
		tokenizer: tokenizer,
		docs:      make(map[string]driven.IndexedDocument),
	}
}

// Upsert inserts or replaces a document by ID. The replaced entry's
// term statistics are discarded wholesale: each upsert builds fresh
// maps, so snapshots taken earlier keep consistent statistics.
func (s *IndexStore) Upsert(_ context.Context, doc *domain.Document) error {
	if !doc.Valid() {
		return domain.ErrInvalidInput
	}

	tokens := s.tokenizer.Tokenize(doc.Text)
	termFreq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		termFreq[tok]++
	}

	entry := driven.IndexedDocument{
		Document:   *doc,
		TermFreq:   termFreq,
		Length:     len(tokens),
		TitleTerms: s.tokenizer.TokenSet(doc.Title),
		TagTerms:   s.tokenizer.TokenSet(joinTags(doc.Tags)),
	}
	entry.Document.Tags = append([]string(nil), doc.Tags...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = entry
	return nil
}

// Snapshot returns a copy of all indexed documents. The per-document
// term maps are shared with the store but never mutated after upsert,
// so readers can score against them without locking.
func (s *IndexStore) Snapshot(_ context.Context) ([]driven.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]driven.IndexedDocument, 0, len(s.docs))
	for id := range s.docs {
		out = append(out, s.docs[id])
	}
	return out, nil
}

// Len returns the number of indexed documents.
func (s *IndexStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// joinTags flattens tags for tokenization.
func joinTags(tags []string) string {
	joined := ""
	for _, t := range tags {
		joined += t + " "
	}
	return joined
}
