package domain

// SourceKind identifies which ingestion path produced a document.
// It drives the update policy and the ranking tie-break order.
type SourceKind string

const (
	// SourceFAQStruct marks documents built from structured FAQ records.
	SourceFAQStruct SourceKind = "faq-struct"

	// SourceFAQMarkdown marks documents split out of the markdown FAQ file.
	SourceFAQMarkdown SourceKind = "faq-markdown"

	// SourceSitePage marks documents built from fetched site pages.
	SourceSitePage SourceKind = "site-page"
)

// Priority returns the tie-break rank for equal-scored search results.
// Lower sorts first: curated FAQ answers beat markdown sections,
// which beat crawled pages.
func (k SourceKind) Priority() int {
	switch k {
	case SourceFAQStruct:
		return 0
	case SourceFAQMarkdown:
		return 1
	case SourceSitePage:
		return 2
	default:
		return 3
	}
}

// Document represents one indexed unit of retrievable text.
// It is the canonical representation after extraction.
type Document struct {
	// ID is the stable identifier, unique per logical source unit
	// (FAQ entry id, heading slug, or canonicalised page URL).
	ID string

	// Title is the human-readable label shown as a citation.
	Title string

	// URL is the canonical reference: an internal route for pages, or
	// a "#faq-<id>" anchor for sources without their own URL.
	URL string

	// Text is the normalised plain-text body used for scoring.
	// Markup is stripped and whitespace collapsed at extraction time.
	// Never empty for an indexed document.
	Text string

	// Tags are optional topical labels, non-unique across documents.
	Tags []string

	// Kind records which ingestion path produced this document.
	Kind SourceKind
}

// Valid reports whether the document satisfies the index invariants:
// non-empty ID, URL and Text.
func (d *Document) Valid() bool {
	return d != nil && d.ID != "" && d.URL != "" && d.Text != ""
}

// FAQEntry is a structured FAQ record before extraction.
type FAQEntry struct {
	// ID is the stable entry identifier.
	ID string `toml:"id"`

	// Question is the question text.
	Question string `toml:"question"`

	// Answer is the answer text.
	Answer string `toml:"answer"`

	// Tags are optional topical labels.
	Tags []string `toml:"tags"`
}
