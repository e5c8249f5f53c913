// Package enrich runs the resumable processing loop.
//
// Items are looked up one at a time, classified, and buffered. Every
// FlushEvery items, and after the last one, the buffer is merged into the
// checkpoint together with the snapshot of unresolved items, then the loop
// pauses to respect the lookup API's rate limit. An abrupt stop loses at most
// one flush interval of work, and nothing already flushed is ever looked up
// again.
package enrich
