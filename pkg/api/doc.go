// Package api implements the HTTP client for the remote authentication
// endpoints. It owns the wire formats (request and response shapes) and
// the transport error taxonomy; everything above it works with the
// normalized types from package auth.
//
// The client performs no retries of its own. Ordinary request retry and
// timeout policy belongs to the http.Client the caller supplies; the
// token refresh scheduler layers its own bounded retry policy on top
// because refresh failures terminate the session, which ordinary
// request failures do not.
//
// Transport-level failures (connection refused, DNS, timeouts) are
// reported as *Error with Status 0 so callers can distinguish "the
// network is down" from "the server said no".
package api
