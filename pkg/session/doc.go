// Package session owns the client's authentication state and is the
// only surface pages and route guards talk to.
//
// The Manager is the single source of truth: the authenticated flag,
// current user, token pair, pending-two-factor flag, loading flag and
// last error all live behind it and change only through its transition
// methods. Synchronous accessors reflect the most recently applied
// state with no delay, because route guards run during a navigation
// event and cannot wait for a notification round-trip; Subscribe
// provides the asynchronous stream for components that render state.
//
// Installing a token arms the proactive refresh scheduler; logging out
// or exhausting refresh retries tears the session down completely. A
// logout always wins over an in-flight refresh: the scheduler discards
// stale results, so no guard ever observes a resurrected session.
package session
