// Package metrics provides an internal, allocation-conscious metrics
// core for sessionkit.
//
// Counters use cache-line-padded atomic slots so that hot-path
// increments from concurrent session operations do not contend on
// shared cache lines. The single latency histogram tracks token
// refresh round trips in fixed millisecond buckets.
//
// # Architecture boundaries
//
// This package must:
//
//   - Remain free of third-party dependencies.
//   - Expose only cheap, lock-free operations on the hot path.
//   - Leave rendering and export formats to metrics/export.
//
// # What this package must NOT do
//
//   - Import sessionkit or any sibling internal package.
//   - Perform I/O of any kind.
//   - Grow per-metric labels or dynamic registration.
package metrics
