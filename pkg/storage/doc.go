// Package storage provides the persistent key-value store the session
// manager uses to keep the access token, refresh token, device ID and
// cached user snapshot across restarts.
//
// Three implementations ship with the package: an in-memory store for
// tests and throwaway sessions, a file store for desktop and CLI hosts,
// and a Redis store for hosts that share session material across
// processes. Anything satisfying Store can be substituted.
package storage
