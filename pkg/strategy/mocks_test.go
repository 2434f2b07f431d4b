package strategy_test

import (
	"context"

	"github.com/vitalpath/authkit/pkg/api"
)

// fakeClient implements api.Client with overridable behavior per
// endpoint. Unset endpoints return an empty successful response.
type fakeClient struct {
	loginFn          func(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	registerFn       func(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	twoFASetupFn     func(ctx context.Context, req api.TwoFactorSetupRequest) (*api.TwoFactorSetupResponse, error)
	twoFAVerifyFn    func(ctx context.Context, req api.TwoFactorVerifyRequest) (*api.AuthResponse, error)
	twoFADisableFn   func(ctx context.Context, req api.TwoFactorDisableRequest) (*api.AuthResponse, error)
	refreshFn        func(ctx context.Context, req api.RefreshRequest) (*api.RefreshResponse, error)
	forgotPasswordFn func(ctx context.Context, req api.ForgotPasswordRequest) (*api.ForgotPasswordResponse, error)
	meFn             func(ctx context.Context) (*api.MeResponse, error)
	googleFn         func(ctx context.Context, req api.GoogleAuthRequest) (*api.AuthResponse, error)
}

func (c *fakeClient) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	if c.loginFn != nil {
		return c.loginFn(ctx, req)
	}
	return &api.AuthResponse{Success: true}, nil
}

func (c *fakeClient) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	if c.registerFn != nil {
		return c.registerFn(ctx, req)
	}
	return &api.AuthResponse{Success: true}, nil
}

func (c *fakeClient) TwoFactorSetup(ctx context.Context, req api.TwoFactorSetupRequest) (*api.TwoFactorSetupResponse, error) {
	if c.twoFASetupFn != nil {
		return c.twoFASetupFn(ctx, req)
	}
	return &api.TwoFactorSetupResponse{Success: true}, nil
}

func (c *fakeClient) TwoFactorVerify(ctx context.Context, req api.TwoFactorVerifyRequest) (*api.AuthResponse, error) {
	if c.twoFAVerifyFn != nil {
		return c.twoFAVerifyFn(ctx, req)
	}
	return &api.AuthResponse{Success: true}, nil
}

func (c *fakeClient) TwoFactorDisable(ctx context.Context, req api.TwoFactorDisableRequest) (*api.AuthResponse, error) {
	if c.twoFADisableFn != nil {
		return c.twoFADisableFn(ctx, req)
	}
	return &api.AuthResponse{Success: true}, nil
}

func (c *fakeClient) Refresh(ctx context.Context, req api.RefreshRequest) (*api.RefreshResponse, error) {
	if c.refreshFn != nil {
		return c.refreshFn(ctx, req)
	}
	return &api.RefreshResponse{Success: true}, nil
}

func (c *fakeClient) ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (*api.ForgotPasswordResponse, error) {
	if c.forgotPasswordFn != nil {
		return c.forgotPasswordFn(ctx, req)
	}
	return &api.ForgotPasswordResponse{Success: true}, nil
}

func (c *fakeClient) Me(ctx context.Context) (*api.MeResponse, error) {
	if c.meFn != nil {
		return c.meFn(ctx)
	}
	return &api.MeResponse{Success: true}, nil
}

func (c *fakeClient) GoogleExchange(ctx context.Context, req api.GoogleAuthRequest) (*api.AuthResponse, error) {
	if c.googleFn != nil {
		return c.googleFn(ctx, req)
	}
	return &api.AuthResponse{Success: true}, nil
}
