// Package guard provides the navigation decision functions pages wire
// into their router. Guards are pure: they read the session's
// synchronous state, never perform I/O, never block, and always resolve
// to an explicit allow or redirect.
//
// While the startup bootstrap is still restoring a persisted session,
// the protected guard allows navigation transiently so a hard reload
// does not bounce an about-to-be-authenticated user to the login page.
package guard
