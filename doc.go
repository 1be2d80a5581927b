// Package sessionkit manages the client-side authentication session for
// education-platform apps: the sign-in state machine, silent token
// refresh ahead of expiry, onboarding resume across process restarts,
// and route-guard decisions derived from session state.
//
// The package is designed for concurrent client workloads: Engine
// methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// sessionkit is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (State, LoginResult, PolicyReport, etc.).
// All internal coordination — flow orchestration, refresh cooldown,
// audit dispatch, metric counters — lives under internal/ and is never
// exported. Storage backends live in store/, route decisions in guard/,
// HTTP adaptation in middleware/.
//
// # What this package must NOT do
//
//   - Verify token signatures. The backend owns token validity; the
//     client only reads scheduling and identity claims.
//   - Block a UI-facing state transition on storage I/O. Persistence
//     failures are logged and reconciled on the next hydrate.
//   - Import store, guard, or middleware (no import cycles; those
//     packages depend on sessionkit, never the reverse).
//
// # Performance contract
//
// State and EnsureFresh are the hot paths. State must complete with one
// mutex acquisition and allocate only the returned snapshot. EnsureFresh
// on a fresh token decodes one JWT payload and returns without network
// or storage I/O.
package sessionkit
