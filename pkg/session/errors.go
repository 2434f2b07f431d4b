package session

import "errors"

var (
	// ErrNoAPIEndpoint indicates the manager was built without a base
	// URL or an explicit API client.
	ErrNoAPIEndpoint = errors.New("session.no_api_endpoint")

	// ErrNoTokenExpiry indicates the access token carries no exp claim,
	// so proactive refresh cannot be scheduled for it.
	ErrNoTokenExpiry = errors.New("session.token_has_no_expiry")

	// ErrNoPendingChallenge indicates a two-factor verification was
	// attempted without a pending challenge session.
	ErrNoPendingChallenge = errors.New("session.no_pending_two_factor_challenge")
)
