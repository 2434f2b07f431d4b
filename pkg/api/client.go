package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the surface the strategy and session layers depend on. It
// mirrors the remote endpoints one method each so tests can substitute
// a hand-written fake without an HTTP server.
type Client interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	TwoFactorSetup(ctx context.Context, req TwoFactorSetupRequest) (*TwoFactorSetupResponse, error)
	TwoFactorVerify(ctx context.Context, req TwoFactorVerifyRequest) (*AuthResponse, error)
	TwoFactorDisable(ctx context.Context, req TwoFactorDisableRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ForgotPasswordResponse, error)
	Me(ctx context.Context) (*MeResponse, error)
	GoogleExchange(ctx context.Context, req GoogleAuthRequest) (*AuthResponse, error)
}

// TokenSource supplies the current access token for authorized calls.
// It returns "" when no session is active.
type TokenSource func() string

// HTTPClient talks JSON over HTTP to the authentication backend.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource TokenSource
	userAgent   string
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets a custom http.Client (timeouts, transport-level
// retry middleware, instrumentation).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource sets the access token provider for authorized calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokenSource = ts }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// New creates an HTTPClient for the given base URL.
func New(baseURL string, opts ...Option) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "authkit/1.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SetTokenSource installs the token provider after construction. The
// session manager needs this because the client is built before the
// manager that owns the token exists.
func (c *HTTPClient) SetTokenSource(ts TokenSource) { c.tokenSource = ts }

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) TwoFactorSetup(ctx context.Context, req TwoFactorSetupRequest) (*TwoFactorSetupResponse, error) {
	var resp TwoFactorSetupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/setup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) TwoFactorVerify(ctx context.Context, req TwoFactorVerifyRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) TwoFactorDisable(ctx context.Context, req TwoFactorDisableRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/2fa/disable", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ForgotPasswordResponse, error) {
	var resp ForgotPasswordResponse
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GoogleExchange(ctx context.Context, req GoogleAuthRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// errorBody is the minimal shape the server uses for error replies.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context cancellation is the caller's doing, not a network fault.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return NetworkError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return NetworkError(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{Status: resp.StatusCode, Message: extractMessage(payload)}
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return errors.Join(ErrDecodeResponse, err)
		}
	}

	return nil
}

// extractMessage pulls the server-provided error text out of an error
// reply, tolerating both {"error": ...} and {"message": ...} shapes.
func extractMessage(payload []byte) string {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
