package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/oswaldlabs/sitechat/internal/analyzer"
	"github.com/oswaldlabs/sitechat/internal/core/domain"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
	"github.com/oswaldlabs/sitechat/internal/core/ports/driving"
	"github.com/oswaldlabs/sitechat/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Weights control the relevance score components: title matches count
// most, tag matches next, and body term-frequency density least.
type Weights struct {
	Title float64
	Tag   float64
	Text  float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{Title: 3.0, Tag: 2.0, Text: 1.0}
}

// Retriever scores and ranks indexed documents against a free-text
// query. Output order is fully deterministic so citations are stable
// across repeated calls.
type Retriever struct {
	store     driven.IndexStore
	tokenizer *analyzer.Tokenizer
	weights   Weights
}

// NewRetriever creates a retriever. Zero-valued weights fall back to
// the defaults.
func NewRetriever(store driven.IndexStore, tokenizer *analyzer.Tokenizer, weights Weights) *Retriever {
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Retriever{
		store:     store,
		tokenizer: tokenizer,
		weights:   weights,
	}
}

// Retrieve returns up to k documents ordered by relevance. Zero-scored
// documents are excluded: the result is never padded with irrelevant
// matches. A query with no usable tokens or a non-positive k yields an
// empty result and a nil error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	logger.Section("Retrieval")
	logger.Debug("query: %q, k: %d", query, k)

	if k <= 0 {
		return []domain.SearchResult{}, nil
	}

	tokens := r.tokenizer.TokenSet(query)
	if len(tokens) == 0 {
		logger.Debug("no usable query tokens")
		return []domain.SearchResult{}, nil
	}

	snapshot, err := r.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(snapshot))
	for _, entry := range snapshot {
		score := r.score(tokens, entry)
		if score <= 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			Document: entry.Document,
			Score:    score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		pi, pj := results[i].Document.Kind.Priority(), results[j].Document.Kind.Priority()
		if pi != pj {
			return pi < pj
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if len(results) > k {
		results = results[:k]
	}

	logger.Debug("returning %d results", len(results))
	return results, nil
}

// score computes the weighted relevance of one document: query tokens
// found in the title, in the tags, and the body term-frequency density.
func (r *Retriever) score(queryTokens map[string]bool, entry driven.IndexedDocument) float64 {
	titleHits, tagHits := 0, 0
	density := 0.0

	for tok := range queryTokens {
		if entry.TitleTerms[tok] {
			titleHits++
		}
		if entry.TagTerms[tok] {
			tagHits++
		}
		if entry.Length > 0 {
			density += float64(entry.TermFreq[tok]) / float64(entry.Length)
		}
	}

	return float64(titleHits)*r.weights.Title +
		float64(tagHits)*r.weights.Tag +
		density*r.weights.Text
}
