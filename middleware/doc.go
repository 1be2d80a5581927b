// Package middleware adapts sessionkit route-guard decisions to
// net/http for companion webviews and embedded dashboards.
//
// # Guards
//
//   - [Guard] — evaluates the engine snapshot for a required role.
//   - [RequireTeacher], [RequireParent], [RequireStudent] — role
//     shortcuts over Guard with default routes.
//
// Each guard snapshots the engine state, asks the guard package for an
// outcome, and answers with a redirect, a 503, or the wrapped handler.
// Rendered requests carry the snapshot in the request context
// ([StateFromContext]).
//
// # Architecture boundaries
//
// This package translates HTTP semantics into guard outcomes. It does
// NOT implement session logic itself — all decisions are delegated to
// guard.Evaluate over an engine snapshot.
//
// # What this package must NOT do
//
//   - Decode tokens or talk to the auth backend.
//   - Mutate engine state (no SignIn, SignOut, or refresh calls).
//   - Invent outcomes beyond what guard.Evaluate returns.
package middleware
