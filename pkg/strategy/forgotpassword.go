package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
)

// ForgotPasswordStrategy triggers a password reset email. The result
// carries "emailSent" in Metadata; the page layer shows the same
// confirmation either way to avoid leaking which addresses exist.
type ForgotPasswordStrategy struct {
	base
}

// NewForgotPassword creates the password reset strategy.
func NewForgotPassword(client api.Client, log *slog.Logger) *ForgotPasswordStrategy {
	return &ForgotPasswordStrategy{base: base{api: client, log: log}}
}

func (s *ForgotPasswordStrategy) Name() string { return auth.FlowForgotPassword }

func (s *ForgotPasswordStrategy) CanHandle(input Credentials) bool {
	in, ok := input.(ForgotPasswordInput)
	if !ok {
		return false
	}
	return strings.Contains(in.Email, "@")
}

func (s *ForgotPasswordStrategy) Execute(ctx context.Context, input Credentials) (*auth.Result, error) {
	in, ok := input.(ForgotPasswordInput)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCannotHandle, auth.FlowForgotPassword)
	}

	resp, err := s.api.ForgotPassword(ctx, api.ForgotPasswordRequest{Email: strings.TrimSpace(in.Email)})
	if err != nil {
		if result, ok := s.mapAPIError(err); ok {
			return result, nil
		}
		return nil, err
	}

	result := &auth.Result{
		Success:  resp.Success,
		Error:    resp.Error,
		Metadata: map[string]any{"emailSent": resp.EmailSent},
	}
	if !resp.Success && result.Error == "" {
		result.Error = msgGenericError
	}
	return result, nil
}
