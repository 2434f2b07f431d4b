package guard

import "net/url"

// SessionInfo is the narrow read surface guards consume. The session
// manager satisfies it.
type SessionInfo interface {
	IsAuthenticated() bool
	RequiresTwoFactor() bool
	Bootstrapping() bool
}

// Decision is the outcome of a guard: allow the navigation, or redirect
// to another route with optional query parameters.
type Decision struct {
	Allow      bool
	RedirectTo string
	Params     url.Values
}

// Allowed builds an allow decision.
func Allowed() Decision {
	return Decision{Allow: true}
}

// RedirectTo builds a redirect decision.
func RedirectTo(target string, params url.Values) Decision {
	return Decision{RedirectTo: target, Params: params}
}

// Paths holds the route targets guards redirect to.
type Paths struct {
	Login     string
	Home      string
	TwoFactor string
}

// DefaultPaths returns the application's standard route targets.
func DefaultPaths() Paths {
	return Paths{
		Login:     "/login",
		Home:      "/dashboard",
		TwoFactor: "/auth/two-factor",
	}
}

// Protected gates routes that require an authenticated session. A
// pending two-factor challenge redirects to the challenge page; an
// unauthenticated session redirects to login carrying the return URL.
func (p Paths) Protected(s SessionInfo, returnURL string) Decision {
	if s.Bootstrapping() {
		return Allowed()
	}
	if s.RequiresTwoFactor() {
		return RedirectTo(p.TwoFactor, nil)
	}
	if s.IsAuthenticated() {
		return Allowed()
	}

	var params url.Values
	if returnURL != "" {
		params = url.Values{"returnUrl": {returnURL}}
	}
	return RedirectTo(p.Login, params)
}

// GuestOnly gates routes that only make sense logged out (login,
// registration); an authenticated user is sent to the landing page.
func (p Paths) GuestOnly(s SessionInfo) Decision {
	if s.Bootstrapping() {
		return Allowed()
	}
	if s.IsAuthenticated() {
		return RedirectTo(p.Home, nil)
	}
	return Allowed()
}

// TwoFactorPending redirects to the challenge page while a second
// factor is outstanding.
//
// Deprecated: Protected folds this check in; the decision table is
// identical. Kept for routers still wired to the standalone guard.
func (p Paths) TwoFactorPending(s SessionInfo) Decision {
	if s.RequiresTwoFactor() {
		return RedirectTo(p.TwoFactor, nil)
	}
	return Allowed()
}
