package strategy

import (
	"errors"
	"log/slog"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
)

// User-facing messages for the shared failure classes.
const (
	msgNetworkError = "Network error. Please check your connection and try again."
	msgServerError  = "Server error. Please try again later."
	msgGenericError = "Something went wrong. Please try again."
)

// base carries what every strategy needs: the API client and a logger.
type base struct {
	api api.Client
	log *slog.Logger
}

// mapAPIError converts an API error into a failed Result, or returns
// false when err is not an API error and must propagate to the caller
// as a transport failure.
//
// Network failures (status 0) and 5xx replies get fixed retry-suggesting
// messages; the numeric status is kept in Metadata and logged. Other
// statuses pass the server-provided message through when present.
func (b base) mapAPIError(err error) (*auth.Result, bool) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return nil, false
	}

	switch {
	case apiErr.IsNetwork():
		b.log.Warn("auth request failed before reaching server", "error", err)
		return auth.Failure(msgNetworkError), true
	case apiErr.IsServer():
		b.log.Error("auth request failed with server error", "status", apiErr.Status)
		result := auth.Failure(msgServerError)
		result.Metadata = map[string]any{"status": apiErr.Status}
		return result, true
	case apiErr.Message != "":
		return auth.Failure(apiErr.Message), true
	default:
		result := auth.Failure(msgGenericError)
		result.Metadata = map[string]any{"status": apiErr.Status}
		return result, true
	}
}

// normalizeAuthResponse converts the shared login/register/verify wire
// shape into a Result, so partial payloads never leak past the strategy
// boundary.
func normalizeAuthResponse(resp *api.AuthResponse) *auth.Result {
	if resp == nil {
		return auth.Failure(msgGenericError)
	}

	result := &auth.Result{
		Success:           resp.Success,
		User:              resp.User,
		Token:             resp.Token,
		RefreshToken:      resp.RefreshToken,
		RequiresTwoFactor: resp.RequiresTwoFA,
		SessionID:         resp.SessionID,
		Error:             resp.Error,
	}
	if !resp.Success && result.Error == "" {
		result.Error = msgGenericError
	}
	if resp.EmailVerificationRequired {
		result.Metadata = map[string]any{"emailVerificationRequired": true}
	}
	return result
}
