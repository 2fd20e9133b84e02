package driving

import (
	"context"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
)

// RetrievalService scores and ranks indexed documents against a
// free-text query.
type RetrievalService interface {
	// Retrieve returns up to k documents ordered by relevance. Documents
	// that match no query token are never included, even when k exceeds
	// the number of positive-scoring documents. An empty query or a
	// non-positive k yields an empty result, not an error.
	Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}
