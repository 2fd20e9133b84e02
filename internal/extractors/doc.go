// Package extractors contains the content extractors that turn raw
// sources into zero or more indexable documents.
//
// Each extractor handles one source shape: structured FAQ records,
// the markdown FAQ file, and fetched site pages. Extraction never
// fails for malformed input; it degrades to zero documents for that
// unit and the caller continues with the rest.
package extractors
