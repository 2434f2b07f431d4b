// Package strategy implements the authentication flows: password
// login, registration, two-factor setup and verification, Google
// sign-in, and password reset. Every flow satisfies the same Strategy
// contract and produces a normalized auth.Result, so the session layer
// treats all of them uniformly.
//
// The Registry dispatches by flow name, or scans for the first strategy
// whose CanHandle accepts the input when the caller does not know the
// flow ahead of time. CanHandle is a pure predicate over the input
// shape and never touches the network, which keeps input-shape failures
// synchronous and unit-testable.
//
// Expected rejections (wrong password, locked account, bad code) come
// back as Result values with Success false and a user-facing message;
// only transport-level surprises surface as Go errors.
package strategy
