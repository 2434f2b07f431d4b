package strategy_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
	"github.com/vitalpath/authkit/pkg/strategy"
)

func TestTwoFactorStrategy_CanHandle(t *testing.T) {
	t.Parallel()
	s := strategy.NewTwoFactor(&fakeClient{}, discardLogger(), "")

	tests := []struct {
		name  string
		input strategy.Credentials
		want  bool
	}{
		{"setup with method", strategy.TwoFactorInput{Setup: true, Method: auth.TwoFactorMethodTOTP}, true},
		{"setup without method", strategy.TwoFactorInput{Setup: true}, false},
		{"verify with code", strategy.TwoFactorInput{Code: "123456"}, true},
		{"verify without code", strategy.TwoFactorInput{SessionID: "s1"}, false},
		{"disable with password", strategy.TwoFactorInput{Disable: true, Password: "pw"}, true},
		{"disable without password", strategy.TwoFactorInput{Disable: true}, false},
		{"wrong variant", strategy.GoogleInput{IDToken: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, s.CanHandle(tt.input))
		})
	}
}

func TestTwoFactorStrategy_Setup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns provisioning material", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFASetupFn: func(_ context.Context, req api.TwoFactorSetupRequest) (*api.TwoFactorSetupResponse, error) {
				assert.Equal(t, auth.TwoFactorMethodTOTP, req.Method)
				return &api.TwoFactorSetupResponse{
					Success:     true,
					Secret:      "JBSWY3DPEHPK3PXP",
					QRCode:      "data:image/png;base64,server-rendered",
					BackupCodes: []string{"1111-2222"},
				}, nil
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "VitalPath")

		result, err := s.Execute(ctx, strategy.TwoFactorInput{Setup: true, Method: auth.TwoFactorMethodTOTP})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", result.Metadata["secret"])
		assert.Equal(t, "data:image/png;base64,server-rendered", result.Metadata["qrCode"])
		assert.Equal(t, []string{"1111-2222"}, result.Metadata["backupCodes"])
	})

	t.Run("renders qr locally when server omits it", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFASetupFn: func(context.Context, api.TwoFactorSetupRequest) (*api.TwoFactorSetupResponse, error) {
				return &api.TwoFactorSetupResponse{Success: true, Secret: "JBSWY3DPEHPK3PXP"}, nil
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "VitalPath")

		result, err := s.Execute(ctx, strategy.TwoFactorInput{
			Setup: true, Method: auth.TwoFactorMethodTOTP, AccountEmail: "a@b.com",
		})
		require.NoError(t, err)

		qr, ok := result.Metadata["qrCode"].(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"), "expected a data-URI PNG, got %q", qr)
	})

	t.Run("setup rejection becomes failed result", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFASetupFn: func(context.Context, api.TwoFactorSetupRequest) (*api.TwoFactorSetupResponse, error) {
				return &api.TwoFactorSetupResponse{Success: false, Error: "2fa already enabled"}, nil
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "")

		result, err := s.Execute(ctx, strategy.TwoFactorInput{Setup: true, Method: auth.TwoFactorMethodTOTP})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "2fa already enabled", result.Error)
	})
}

func TestTwoFactorStrategy_Verify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("verify returns full tokens", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFAVerifyFn: func(_ context.Context, req api.TwoFactorVerifyRequest) (*api.AuthResponse, error) {
				assert.Equal(t, "123456", req.Code)
				assert.Equal(t, "challenge-1", req.SessionID)
				return &api.AuthResponse{
					Success: true, Token: "access-1", RefreshToken: "refresh-1",
					User: &auth.User{ID: "u1", TwoFactorEnabled: true},
				}, nil
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "")

		result, err := s.Execute(ctx, strategy.TwoFactorInput{Code: "123456", SessionID: "challenge-1"})
		require.NoError(t, err)
		assert.True(t, result.Authenticated())
		assert.Equal(t, "access-1", result.Token)
	})

	t.Run("backup code flag forwarded", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFAVerifyFn: func(_ context.Context, req api.TwoFactorVerifyRequest) (*api.AuthResponse, error) {
				assert.True(t, req.IsBackupCode)
				return &api.AuthResponse{Success: true, Token: "t"}, nil
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "")

		_, err := s.Execute(ctx, strategy.TwoFactorInput{Code: "1111-2222", IsBackupCode: true})
		require.NoError(t, err)
	})

	t.Run("bad code passes server message through", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFAVerifyFn: func(context.Context, api.TwoFactorVerifyRequest) (*api.AuthResponse, error) {
				return nil, &api.Error{Status: 400, Message: "invalid code"}
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "")

		result, err := s.Execute(ctx, strategy.TwoFactorInput{Code: "000000"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "invalid code", result.Error)
	})
}

func TestTwoFactorStrategy_Disable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("forwards the password", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFADisableFn: func(_ context.Context, req api.TwoFactorDisableRequest) (*api.AuthResponse, error) {
				assert.Equal(t, "pw", req.Password)
				return &api.AuthResponse{Success: true}, nil
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "")

		result, err := s.Execute(ctx, strategy.TwoFactorInput{Disable: true, Password: "pw"})
		require.NoError(t, err)
		assert.True(t, result.Success)
	})

	t.Run("wrong password passes server message through", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFADisableFn: func(context.Context, api.TwoFactorDisableRequest) (*api.AuthResponse, error) {
				return nil, &api.Error{Status: 401, Message: "invalid password"}
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "")

		result, err := s.Execute(ctx, strategy.TwoFactorInput{Disable: true, Password: "wrong"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "invalid password", result.Error)
	})

	t.Run("network failure maps to the shared message", func(t *testing.T) {
		t.Parallel()
		client := &fakeClient{
			twoFADisableFn: func(context.Context, api.TwoFactorDisableRequest) (*api.AuthResponse, error) {
				return nil, &api.Error{Status: 0}
			},
		}
		s := strategy.NewTwoFactor(client, discardLogger(), "")

		result, err := s.Execute(ctx, strategy.TwoFactorInput{Disable: true, Password: "pw"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "Network error")
	})
}
