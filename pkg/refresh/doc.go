// Package refresh keeps the access token alive without any caller
// checking expiry manually. When a token is installed the scheduler
// arms a single timer ahead of the expiry deadline (lead time minus a
// random jitter so many open sessions do not refresh in lockstep) and
// calls the refresh endpoint when it fires. Failures retry with
// exponential backoff up to a bounded count; exhaustion terminates the
// session through the expire callback, never silently.
//
// Every schedule carries a generation number (epoch). Any asynchronous
// completion compares its captured epoch against the current one before
// touching anything, so a refresh that resolves after the user logged
// out is discarded instead of resurrecting the session.
//
// The retry policy here is deliberately separate from any transport
// retry middleware: a failed refresh ends the session, a failed
// ordinary request does not.
package refresh
