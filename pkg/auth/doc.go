// Package auth defines the shared vocabulary of the authentication
// client: the user identity record, the normalized result every
// authentication flow produces, and the canonical flow names.
//
// The package holds no behavior beyond small helpers on Result; the
// flows themselves live in package strategy and the state they feed
// lives in package session.
package auth
