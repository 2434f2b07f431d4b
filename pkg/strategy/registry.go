package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
)

// Registry is the fixed, name-indexed set of authentication strategies.
// It is built once at startup and immutable afterward.
type Registry struct {
	order  []string
	byName map[string]Strategy
	log    *slog.Logger
}

// RegistryOption configures the Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	log    *slog.Logger
	google GoogleConfig
	issuer string
}

// WithLogger sets the logger shared by all strategies.
func WithLogger(log *slog.Logger) RegistryOption {
	return func(c *registryConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithGoogleConfig sets the OAuth client registration for the Google
// strategy's authorization URL builder.
func WithGoogleConfig(cfg GoogleConfig) RegistryOption {
	return func(c *registryConfig) { c.google = cfg }
}

// WithIssuer sets the issuer label for locally rendered two-factor
// provisioning URIs.
func WithIssuer(issuer string) RegistryOption {
	return func(c *registryConfig) { c.issuer = issuer }
}

// NewRegistry builds the registry with all five flows registered.
func NewRegistry(client api.Client, opts ...RegistryOption) *Registry {
	cfg := registryConfig{log: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	strategies := []Strategy{
		NewLogin(client, cfg.log),
		NewRegister(client, cfg.log),
		NewTwoFactor(client, cfg.log, cfg.issuer),
		NewGoogle(client, cfg.log, cfg.google),
		NewForgotPassword(client, cfg.log),
	}

	r := &Registry{
		byName: make(map[string]Strategy, len(strategies)),
		log:    cfg.log,
	}
	for _, s := range strategies {
		r.order = append(r.order, s.Name())
		r.byName[s.Name()] = s
	}
	return r
}

// Get returns the strategy registered under name.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Execute dispatches the input to the named strategy. It fails before
// any network call when the name is unknown or the strategy rejects the
// input shape.
func (r *Registry) Execute(ctx context.Context, name string, input Credentials) (*auth.Result, error) {
	s, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	if !s.CanHandle(input) {
		return nil, fmt.Errorf("%w: %q", ErrCannotHandle, name)
	}
	return s.Execute(ctx, input)
}

// ExecuteAuto runs the first strategy whose CanHandle accepts the
// input, in registration order. Used only where the caller does not
// know the flow ahead of time.
func (r *Registry) ExecuteAuto(ctx context.Context, input Credentials) (*auth.Result, error) {
	for _, name := range r.order {
		s := r.byName[name]
		if s.CanHandle(input) {
			r.log.Debug("auto-dispatching auth flow", "flow", name)
			return s.Execute(ctx, input)
		}
	}
	return nil, ErrNoMatch
}
