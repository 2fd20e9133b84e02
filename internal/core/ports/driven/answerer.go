package driven

import (
	"context"

	"github.com/oswaldlabs/sitechat/internal/core/domain"
)

// Answerer is the downstream language-model call that consumes the
// retrieved snippets. It is given the user question plus the scored
// sources and produces a grounded answer.
type Answerer interface {
	Answer(ctx context.Context, question string, sources []domain.SearchResult) (string, error)
}
