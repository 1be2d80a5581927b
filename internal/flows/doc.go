// Package flows holds the session lifecycle flows behind the root
// engine: token freshness renewal, startup restore, and profile
// onboarding.
//
// Each flow is a pure function over an explicit dependency struct.
// Dependencies are function fields and narrow interfaces, so every
// branch is reachable from a table test with plain closures and no
// storage or network fakes.
//
// # Architecture boundaries
//
// This package must:
//
//   - Receive all collaborators through its Deps structs.
//   - Classify failures with FailureKind values and leave error
//     mapping to the root engine.
//   - Hold no state between calls.
//
// # What this package must NOT do
//
//   - Import sessionkit or any sibling internal package.
//   - Mutate session state, emit audit events, or touch metrics.
//   - Decide retry or UI policy.
package flows
