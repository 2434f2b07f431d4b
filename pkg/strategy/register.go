package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
)

// RegisterStrategy creates a new account. It accepts both the current
// English field names and the localized names (Nombre/Apellido) an
// older client still sends, normalizing both into one request shape.
type RegisterStrategy struct {
	base
}

// NewRegister creates the registration strategy.
func NewRegister(client api.Client, log *slog.Logger) *RegisterStrategy {
	return &RegisterStrategy{base: base{api: client, log: log}}
}

func (s *RegisterStrategy) Name() string { return auth.FlowRegister }

// CanHandle requires an email, a password, and a first and last name
// under either naming scheme. Terms acceptance is required explicitly,
// except for the localized shape: that client predates the checkbox and
// acceptance is implied.
func (s *RegisterStrategy) CanHandle(input Credentials) bool {
	data, ok := input.(RegisterData)
	if !ok {
		return false
	}

	if data.Email == "" || data.Password == "" {
		return false
	}
	if data.FirstName == "" && data.Nombre == "" {
		return false
	}
	if data.LastName == "" && data.Apellido == "" {
		return false
	}
	return data.AcceptTerms || data.localized()
}

func (s *RegisterStrategy) Execute(ctx context.Context, input Credentials) (*auth.Result, error) {
	data, ok := input.(RegisterData)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCannotHandle, auth.FlowRegister)
	}

	resp, err := s.api.Register(ctx, normalizeRegisterData(data))
	if err != nil {
		if result, ok := s.mapAPIError(err); ok {
			return result, nil
		}
		return nil, err
	}

	return normalizeAuthResponse(resp), nil
}

// normalizeRegisterData resolves the two client shapes into the wire
// request. English fields win when both are present.
func normalizeRegisterData(data RegisterData) api.RegisterRequest {
	firstName := data.FirstName
	if firstName == "" {
		firstName = data.Nombre
	}
	lastName := data.LastName
	if lastName == "" {
		lastName = data.Apellido
	}

	localized := data.localized()
	return api.RegisterRequest{
		Email:         strings.TrimSpace(data.Email),
		Password:      data.Password,
		FirstName:     strings.TrimSpace(firstName),
		LastName:      strings.TrimSpace(lastName),
		Phone:         data.Phone,
		BirthDate:     data.BirthDate,
		AcceptTerms:   data.AcceptTerms || localized,
		AcceptPrivacy: data.AcceptPrivacy || localized,
	}
}
