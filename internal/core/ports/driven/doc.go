// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - IndexStore: In-memory document index with snapshot reads
//   - PageFetcher: Retrieves one site page over HTTP
//   - FAQSource: Supplies the structured FAQ records and the markdown FAQ file
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Answerer: Language model call that turns sources into an answer.
//     Without it, the chat route returns citations only.
//   - Analytics: Fire-and-forget event capture. Without it, no events
//     are recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
