// Package guard turns a session snapshot into a routing decision for
// role-scoped navigation shells.
//
// # Decision order
//
// Evaluate applies a fixed precedence: an uninitialized engine renders
// nothing, a signed-out session redirects to login, an authenticated
// session without a profile redirects to onboarding, a profile on the
// wrong shell redirects to its role home, and only then does the
// requested route render. Exactly one outcome applies to any input.
//
// # Architecture boundaries
//
// This package is a pure function over sessionkit value types with no
// I/O and no internal state. It provides the route table consumed by
// the middleware adapter.
//
// # What this package must NOT do
//
//   - Access storage, the network, or the engine itself.
//   - Import store or middleware.
//   - Mutate the snapshot it is handed.
package guard
