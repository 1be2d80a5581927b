// Package store ships the token and scratch storage backends consumed
// through the sessionkit.TokenStore and sessionkit.ScratchStore
// interfaces: an in-memory store for tests and simulators, a file store
// for a device's local durable storage, and a Redis store for device
// farms and the companion session broker.
//
// # Absence semantics
//
// A missing pair, profile, or scratch item reads back as (nil, nil).
// Errors are reserved for backends that could not answer
// ([ErrUnavailable]) or handed back bytes that do not decode
// ([ErrCorrupt]).
//
// # Architecture boundaries
//
// Implementations depend on sessionkit value types only. Nothing in
// sessionkit imports this package; wiring happens at build time through
// [sessionkit.Builder].
//
// # What this package must NOT do
//
//   - Interpret scratch payloads. They are opaque bytes owned by the
//     engine.
//   - Cache across calls. Every read reflects the backend at call time.
//   - Import guard or middleware.
package store
