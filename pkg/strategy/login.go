package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgAccountLocked      = "Account is locked. Try again later or reset your password."
)

// LoginStrategy authenticates with email (or username) and password.
//
// A response demanding a second factor is still a successful request:
// the Result carries Success true together with RequiresTwoFactor and
// the challenge SessionID, and the session layer keeps the user
// unauthenticated until the challenge is satisfied.
type LoginStrategy struct {
	base
}

// NewLogin creates the password login strategy.
func NewLogin(client api.Client, log *slog.Logger) *LoginStrategy {
	return &LoginStrategy{base: base{api: client, log: log}}
}

func (s *LoginStrategy) Name() string { return auth.FlowLogin }

func (s *LoginStrategy) CanHandle(input Credentials) bool {
	creds, ok := input.(LoginCredentials)
	if !ok {
		return false
	}
	return (creds.Email != "" || creds.Username != "") && creds.Password != ""
}

func (s *LoginStrategy) Execute(ctx context.Context, input Credentials) (*auth.Result, error) {
	creds, ok := input.(LoginCredentials)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCannotHandle, auth.FlowLogin)
	}

	email := creds.Email
	if email == "" {
		email = creds.Username
	}

	resp, err := s.api.Login(ctx, api.LoginRequest{
		Email:      email,
		Password:   creds.Password,
		RememberMe: creds.RememberMe,
	})
	if err != nil {
		switch api.StatusOf(err) {
		case http.StatusUnauthorized:
			return auth.Failure(msgInvalidCredentials), nil
		case http.StatusLocked:
			return auth.Failure(msgAccountLocked), nil
		}
		if result, ok := s.mapAPIError(err); ok {
			return result, nil
		}
		return nil, err
	}

	result := normalizeAuthResponse(resp)
	if result.RequiresTwoFactor {
		s.log.Info("login accepted, second factor pending", "session_id", result.SessionID)
	}
	return result, nil
}
