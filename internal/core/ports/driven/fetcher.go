package driven

import "context"

// PageFetcher retrieves one URL's body over HTTP.
//
// Implementations apply a bounded timeout. On timeout, non-2xx status
// or network failure they return ok=false and the caller skips that
// page; a single failing page never aborts ingestion of the rest.
// Retry policy, if any, belongs to the ingestion coordinator.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (body string, ok bool)
}
