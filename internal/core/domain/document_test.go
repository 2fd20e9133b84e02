package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceKind_Priority(t *testing.T) {
	assert.Less(t, SourceFAQStruct.Priority(), SourceFAQMarkdown.Priority())
	assert.Less(t, SourceFAQMarkdown.Priority(), SourceSitePage.Priority())
	assert.Greater(t, SourceKind("unknown").Priority(), SourceSitePage.Priority())
}

func TestDocument_Valid(t *testing.T) {
	tests := []struct {
		name string
		doc  *Document
		want bool
	}{
		{
			name: "complete document",
			doc:  &Document{ID: "q1", URL: "#faq-q1", Text: "some text"},
			want: true,
		},
		{
			name: "missing id",
			doc:  &Document{URL: "#faq-q1", Text: "some text"},
			want: false,
		},
		{
			name: "missing url",
			doc:  &Document{ID: "q1", Text: "some text"},
			want: false,
		},
		{
			name: "empty text",
			doc:  &Document{ID: "q1", URL: "#faq-q1"},
			want: false,
		},
		{
			name: "nil document",
			doc:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.Valid())
		})
	}
}

func TestSearchResult_Citation(t *testing.T) {
	r := SearchResult{
		Document: Document{ID: "/about", Title: "About", URL: "https://example.dev/about", Text: "hi"},
		Score:    1.5,
	}
	c := r.Citation()
	assert.Equal(t, "About", c.Title)
	assert.Equal(t, "https://example.dev/about", c.URL)
}
