package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
)

// GoogleConfig holds the OAuth client registration used to build
// authorization URLs. The secret exchange happens server-side, so no
// client secret lives here.
type GoogleConfig struct {
	ClientID    string   `env:"GOOGLE_CLIENT_ID"`
	RedirectURL string   `env:"GOOGLE_REDIRECT_URL"`
	Scopes      []string `env:"GOOGLE_SCOPES" envSeparator:","`
}

// GoogleStrategy exchanges a Google credential (authorization code, ID
// token, or access token) server-side for application tokens.
type GoogleStrategy struct {
	base
	oauth oauth2.Config
}

// NewGoogle creates the Google sign-in strategy.
func NewGoogle(client api.Client, log *slog.Logger, cfg GoogleConfig) *GoogleStrategy {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}

	return &GoogleStrategy{
		base: base{api: client, log: log},
		oauth: oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURL,
			Scopes:      scopes,
			Endpoint:    google.Endpoint,
		},
	}
}

func (s *GoogleStrategy) Name() string { return auth.FlowGoogle }

func (s *GoogleStrategy) CanHandle(input Credentials) bool {
	in, ok := input.(GoogleInput)
	if !ok {
		return false
	}
	return in.AuthorizationCode != "" || in.IDToken != "" || in.AccessToken != ""
}

func (s *GoogleStrategy) Execute(ctx context.Context, input Credentials) (*auth.Result, error) {
	in, ok := input.(GoogleInput)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCannotHandle, auth.FlowGoogle)
	}

	resp, err := s.api.GoogleExchange(ctx, api.GoogleAuthRequest{
		AuthorizationCode: in.AuthorizationCode,
		IDToken:           in.IDToken,
		AccessToken:       in.AccessToken,
	})
	if err != nil {
		if result, ok := s.mapAPIError(err); ok {
			return result, nil
		}
		return nil, err
	}

	return normalizeAuthResponse(resp), nil
}

// AuthorizationURL builds the Google consent page URL for the given
// CSRF state. Pure; no network call.
func (s *GoogleStrategy) AuthorizationURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}
