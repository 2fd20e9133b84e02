// Package analyzer turns free text into the lowercase tokens the index
// and the retriever agree on. Both sides must tokenize identically or
// term statistics stop lining up with queries.
package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into scoring tokens with stopword removal.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a new Tokenizer with the default stopword set.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{stopwords: defaultStopwords()}
}

// Tokenize splits text into lowercase tokens. Tokens shorter than three
// characters and stopwords are dropped.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len(word) <= 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// TokenSet returns the distinct tokens of text as a set.
func (t *Tokenizer) TokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range t.Tokenize(text) {
		set[tok] = true
	}
	return set
}

// splitWords splits text on non-word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

// defaultStopwords returns a set of common English stopwords.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"and", "are", "but", "for", "from", "has", "had", "have",
		"his", "her", "its", "not", "our", "she", "the", "their",
		"they", "this", "that", "was", "were", "will", "with", "you",
		"your", "all", "can", "did", "does", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "such",
		"than", "too", "very", "just", "also", "about", "into", "over",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
