package strategy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/strategy"
)

func TestRegisterStrategy_CanHandle(t *testing.T) {
	t.Parallel()
	s := strategy.NewRegister(&fakeClient{}, discardLogger())

	tests := []struct {
		name  string
		input strategy.Credentials
		want  bool
	}{
		{
			"english form with terms",
			strategy.RegisterData{Email: "a@b.com", Password: "pw", FirstName: "Ann", LastName: "Lee", AcceptTerms: true},
			true,
		},
		{
			"english form without terms",
			strategy.RegisterData{Email: "a@b.com", Password: "pw", FirstName: "Ann", LastName: "Lee"},
			false,
		},
		{
			"localized form implies terms",
			strategy.RegisterData{Email: "a@b.com", Password: "pw", Nombre: "Juan", Apellido: "Pérez"},
			true,
		},
		{
			"mixed naming schemes",
			strategy.RegisterData{Email: "a@b.com", Password: "pw", FirstName: "Juan", Apellido: "Pérez"},
			true,
		},
		{
			"missing last name in both schemes",
			strategy.RegisterData{Email: "a@b.com", Password: "pw", FirstName: "Ann", AcceptTerms: true},
			false,
		},
		{
			"missing email",
			strategy.RegisterData{Password: "pw", Nombre: "Juan", Apellido: "Pérez"},
			false,
		},
		{
			"wrong variant",
			strategy.LoginCredentials{Email: "a@b.com", Password: "pw"},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, s.CanHandle(tt.input))
		})
	}
}

func TestRegisterStrategy_Execute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("localized fields normalize to english request", func(t *testing.T) {
		t.Parallel()
		var got api.RegisterRequest
		client := &fakeClient{
			registerFn: func(_ context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
				got = req
				return &api.AuthResponse{Success: true, Token: "t"}, nil
			},
		}
		s := strategy.NewRegister(client, discardLogger())

		result, err := s.Execute(ctx, strategy.RegisterData{
			Email:    "juan@example.com",
			Password: "pw",
			Nombre:   "Juan",
			Apellido: "Pérez",
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "Juan", got.FirstName)
		assert.Equal(t, "Pérez", got.LastName)
		assert.True(t, got.AcceptTerms, "legacy localized form implies acceptance")
		assert.True(t, got.AcceptPrivacy)
	})

	t.Run("english fields win over localized", func(t *testing.T) {
		t.Parallel()
		var got api.RegisterRequest
		client := &fakeClient{
			registerFn: func(_ context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
				got = req
				return &api.AuthResponse{Success: true}, nil
			},
		}
		s := strategy.NewRegister(client, discardLogger())

		_, err := s.Execute(ctx, strategy.RegisterData{
			Email: "a@b.com", Password: "pw",
			FirstName: "Ann", Nombre: "Juan",
			LastName: "Lee", Apellido: "Pérez",
			AcceptTerms: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Ann", got.FirstName)
		assert.Equal(t, "Lee", got.LastName)
	})

	t.Run("conflict passes server message through", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			registerFn: func(context.Context, api.RegisterRequest) (*api.AuthResponse, error) {
				return nil, &api.Error{Status: 409, Message: "email already registered"}
			},
		}
		s := strategy.NewRegister(client, discardLogger())

		result, err := s.Execute(ctx, strategy.RegisterData{
			Email: "a@b.com", Password: "pw", FirstName: "A", LastName: "B", AcceptTerms: true,
		})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "email already registered", result.Error)
	})

	t.Run("email verification flag lands in metadata", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			registerFn: func(context.Context, api.RegisterRequest) (*api.AuthResponse, error) {
				return &api.AuthResponse{Success: true, EmailVerificationRequired: true}, nil
			},
		}
		s := strategy.NewRegister(client, discardLogger())

		result, err := s.Execute(ctx, strategy.RegisterData{
			Email: "a@b.com", Password: "pw", FirstName: "A", LastName: "B", AcceptTerms: true,
		})
		require.NoError(t, err)
		assert.Equal(t, true, result.Metadata["emailVerificationRequired"])
	})
}
