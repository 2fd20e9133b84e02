package domain

// SearchResult represents a single retrieval hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Score is the relevance score. Always positive: zero-scored
	// documents are never returned.
	Score float64
}

// Source is the citation shape handed to the chat route:
// just enough to render a reference link.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Citation converts a result to its citation form.
func (r SearchResult) Citation() Source {
	return Source{Title: r.Document.Title, URL: r.Document.URL}
}
