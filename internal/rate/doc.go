// Package rate implements the in-process cooldown that backs off token
// refresh attempts after repeated consecutive failures.
//
// A device that keeps failing to refresh (captive portal, revoked
// session, server outage) should not hammer the refresh endpoint on
// every lifecycle event. The limiter counts consecutive failures and,
// once the budget is exhausted, rejects further attempts until the
// cooldown window passes. Any successful refresh resets the counter.
//
// # Architecture boundaries
//
// This package must:
//
//   - Stay purely in-process with no I/O.
//   - Be safe for concurrent use from engine goroutines.
//   - Treat a nil *Limiter as "cooldown disabled".
//
// # What this package must NOT do
//
//   - Import sessionkit or any sibling internal package.
//   - Decide refresh policy beyond the cooldown gate.
package rate
