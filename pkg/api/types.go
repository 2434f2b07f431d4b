package api

import "github.com/vitalpath/authkit/pkg/auth"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// RegisterRequest is the body of POST /auth/register. Field names are
// already normalized; localized client shapes are translated before
// this point.
type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Phone         string `json:"phone,omitempty"`
	BirthDate     string `json:"birthDate,omitempty"`
	AcceptTerms   bool   `json:"acceptTerms"`
	AcceptPrivacy bool   `json:"acceptPrivacy"`
}

// AuthResponse is the shared response shape of login, register,
// two-factor verify and the Google exchange. Most fields are optional
// on the wire; the strategy layer normalizes them into auth.Result so
// partial payloads never leak further up.
type AuthResponse struct {
	Success                   bool       `json:"success"`
	Token                     string     `json:"token,omitempty"`
	RefreshToken              string     `json:"refreshToken,omitempty"`
	RequiresTwoFA             bool       `json:"requiresTwoFA,omitempty"`
	SessionID                 string     `json:"sessionId,omitempty"`
	User                      *auth.User `json:"user,omitempty"`
	Error                     string     `json:"error,omitempty"`
	EmailVerificationRequired bool       `json:"emailVerificationRequired,omitempty"`
}

// TwoFactorSetupRequest is the body of POST /auth/2fa/setup.
type TwoFactorSetupRequest struct {
	Method string `json:"method"`
}

// TwoFactorSetupResponse carries the enrollment material: the shared
// secret, an optional server-rendered QR image (data URI), and one-time
// backup codes.
type TwoFactorSetupResponse struct {
	Success     bool     `json:"success"`
	QRCode      string   `json:"qrCode,omitempty"`
	Secret      string   `json:"secret,omitempty"`
	BackupCodes []string `json:"backupCodes,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// TwoFactorVerifyRequest is the body of POST /auth/2fa/verify.
type TwoFactorVerifyRequest struct {
	Code         string `json:"code"`
	SessionID    string `json:"sessionId,omitempty"`
	IsBackupCode bool   `json:"isBackupCode,omitempty"`
}

// TwoFactorDisableRequest is the body of POST /auth/2fa/disable.
type TwoFactorDisableRequest struct {
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"deviceId,omitempty"`
}

// RefreshResponse is the reply to POST /auth/refresh.
type RefreshResponse struct {
	Success      bool   `json:"success"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse is the reply to POST /auth/forgot-password.
type ForgotPasswordResponse struct {
	Success    bool   `json:"success"`
	ResetToken string `json:"resetToken,omitempty"`
	EmailSent  bool   `json:"emailSent,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MeResponse is the reply to GET /auth/me.
type MeResponse struct {
	Success bool       `json:"success"`
	User    *auth.User `json:"user,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// GoogleAuthRequest is the body of POST /auth/google. Exactly one of
// the three credential fields is expected to be set.
type GoogleAuthRequest struct {
	AuthorizationCode string `json:"authorizationCode,omitempty"`
	IDToken           string `json:"idToken,omitempty"`
	AccessToken       string `json:"accessToken,omitempty"`
}
