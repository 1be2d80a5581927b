// Package internal contains helper utilities that are intentionally private to
// sessionkit, including random suffix generation for atomic file writes.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function flow orchestrators for lifecycle operations
//   - metrics — lock-free counters and latency histograms
//   - rate — in-process refresh attempt cooldown tracking
//
// # What this package must NOT do
//
//   - Export types that appear in the public sessionkit API.
//   - Be imported by any package outside the sessionkit module.
package internal
