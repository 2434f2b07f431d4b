package strategy

import (
	"context"
	"errors"

	"github.com/vitalpath/authkit/pkg/auth"
)

var (
	// ErrUnknownStrategy indicates no strategy is registered under the
	// requested flow name.
	ErrUnknownStrategy = errors.New("strategy.unknown")

	// ErrCannotHandle indicates the chosen strategy rejected the input
	// shape before any network call.
	ErrCannotHandle = errors.New("strategy.cannot_handle_input")

	// ErrNoMatch indicates no registered strategy accepted the input.
	ErrNoMatch = errors.New("strategy.no_match")
)

// Credentials is the closed set of per-flow input shapes. Each flow
// reads only its own variant; CanHandle rejects the rest.
type Credentials interface {
	flow() string
}

// LoginCredentials is the password login input. Either Email or
// Username identifies the account; Email wins when both are set.
type LoginCredentials struct {
	Email      string
	Username   string
	Password   string
	RememberMe bool
}

func (LoginCredentials) flow() string { return auth.FlowLogin }

// RegisterData is the registration input. It accepts both the English
// field names and the localized names an older client shipped with
// (Nombre/Apellido); Normalize resolves the two shapes into one.
type RegisterData struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Nombre    string
	Apellido  string
	Phone     string
	BirthDate string

	AcceptTerms   bool
	AcceptPrivacy bool
}

func (RegisterData) flow() string { return auth.FlowRegister }

// localized reports whether the record uses the legacy localized field
// names. The legacy client had no terms checkbox, so the localized
// shape implies acceptance.
func (d RegisterData) localized() bool {
	return d.Nombre != "" || d.Apellido != ""
}

// TwoFactorInput drives the two-factor flow: Setup true begins
// enrollment for the given method, Disable true turns the second
// factor off after re-confirming the password, otherwise Code (with an
// optional login SessionID) verifies a challenge.
type TwoFactorInput struct {
	Setup        bool
	Method       string
	AccountEmail string // labels the provisioning URI during setup

	Disable  bool
	Password string // re-confirms the account when disabling

	Code         string
	SessionID    string
	IsBackupCode bool
}

func (TwoFactorInput) flow() string { return auth.FlowTwoFactor }

// GoogleInput carries exactly one Google credential to exchange
// server-side for application tokens.
type GoogleInput struct {
	AuthorizationCode string
	IDToken           string
	AccessToken       string
}

func (GoogleInput) flow() string { return auth.FlowGoogle }

// ForgotPasswordInput requests a password reset email.
type ForgotPasswordInput struct {
	Email string
}

func (ForgotPasswordInput) flow() string { return auth.FlowForgotPassword }

// Strategy is one self-contained authentication flow.
type Strategy interface {
	// Name returns the flow identifier the registry dispatches on.
	Name() string

	// CanHandle reports whether the input shape is acceptable. It is a
	// pure predicate: no I/O, no side effects.
	CanHandle(input Credentials) bool

	// Execute runs the flow. Expected rejections are reported inside
	// the Result; returned errors are transport-level failures only.
	Execute(ctx context.Context, input Credentials) (*auth.Result, error)
}
