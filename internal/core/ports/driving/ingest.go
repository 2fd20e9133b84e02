package driving

import "context"

// IngestionService exposes the idempotent warm-up operations the chat
// route calls at the start of every request.
//
// For each logical source, the first caller performs the real work;
// concurrent callers coalesce onto the same in-flight execution and
// observe the same completion. Once a source is ensured, later calls
// are O(1) checks.
type IngestionService interface {
	// EnsureFAQDocs ingests the structured FAQ records exactly once per
	// process lifetime.
	EnsureFAQDocs(ctx context.Context) error

	// EnsureFAQMarkdown ingests the markdown FAQ document exactly once
	// per process lifetime (until invalidated).
	EnsureFAQMarkdown(ctx context.Context) error

	// EnsureSiteIndexed fetches and indexes the given site paths. Paths
	// already ensured for the origin are never re-fetched; paths that
	// failed stay un-ensured and are retried on the next call. A failing
	// path is not fatal to the others.
	EnsureSiteIndexed(ctx context.Context, origin string, paths []string) error

	// InvalidateFAQMarkdown clears the markdown FAQ ensured flag so the
	// next warm-up re-ingests it. Used when the source file changes.
	InvalidateFAQMarkdown()
}
