package session

import (
	"log/slog"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/refresh"
	"github.com/vitalpath/authkit/pkg/storage"
	"github.com/vitalpath/authkit/pkg/strategy"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithConfig sets the full configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// WithBaseURL sets the authentication API root.
func WithBaseURL(url string) Option {
	return func(m *Manager) { m.cfg.BaseURL = url }
}

// WithAPIClient substitutes the API client, bypassing BaseURL.
func WithAPIClient(client api.Client) Option {
	return func(m *Manager) { m.api = client }
}

// WithStorage sets the persistent key-value store for session material.
// Defaults to an in-memory store (no persistence across restarts).
func WithStorage(store storage.Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithLogger sets the logger shared across the manager, the strategies
// and the refresh scheduler.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithRefreshConfig overrides the token refresh scheduling knobs.
func WithRefreshConfig(cfg refresh.Config) Option {
	return func(m *Manager) { m.cfg.Refresh = cfg }
}

// WithGoogleConfig sets the OAuth client registration for Google
// sign-in.
func WithGoogleConfig(cfg strategy.GoogleConfig) Option {
	return func(m *Manager) { m.cfg.Google = cfg }
}

// WithIssuer sets the issuer label for two-factor provisioning URIs.
func WithIssuer(issuer string) Option {
	return func(m *Manager) { m.cfg.Issuer = issuer }
}
