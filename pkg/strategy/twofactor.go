package strategy

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
)

const qrImageSize = 256

// TwoFactorStrategy handles the second-factor flow end to end:
// enrollment (Setup true), disabling (Disable true, password
// re-confirmed) and challenge verification (Code set).
//
// Setup results carry the provisioning material in Metadata: "secret",
// "qrCode" (a data-URI PNG) and "backupCodes". When the server returns
// a secret without a rendered QR image, the strategy renders the
// otpauth provisioning URI locally so the page layer never has to.
type TwoFactorStrategy struct {
	base
	issuer string
}

// NewTwoFactor creates the two-factor strategy. The issuer labels
// locally rendered provisioning URIs in authenticator apps.
func NewTwoFactor(client api.Client, log *slog.Logger, issuer string) *TwoFactorStrategy {
	if issuer == "" {
		issuer = "VitalPath"
	}
	return &TwoFactorStrategy{base: base{api: client, log: log}, issuer: issuer}
}

func (s *TwoFactorStrategy) Name() string { return auth.FlowTwoFactor }

func (s *TwoFactorStrategy) CanHandle(input Credentials) bool {
	in, ok := input.(TwoFactorInput)
	if !ok {
		return false
	}
	switch {
	case in.Setup:
		return in.Method != ""
	case in.Disable:
		return in.Password != ""
	default:
		return in.Code != ""
	}
}

func (s *TwoFactorStrategy) Execute(ctx context.Context, input Credentials) (*auth.Result, error) {
	in, ok := input.(TwoFactorInput)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCannotHandle, auth.FlowTwoFactor)
	}
	switch {
	case in.Setup:
		return s.setup(ctx, in)
	case in.Disable:
		return s.disable(ctx, in)
	default:
		return s.verify(ctx, in)
	}
}

func (s *TwoFactorStrategy) setup(ctx context.Context, in TwoFactorInput) (*auth.Result, error) {
	resp, err := s.api.TwoFactorSetup(ctx, api.TwoFactorSetupRequest{Method: in.Method})
	if err != nil {
		if result, ok := s.mapAPIError(err); ok {
			return result, nil
		}
		return nil, err
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = msgGenericError
		}
		return auth.Failure(msg), nil
	}

	qrImage := resp.QRCode
	if qrImage == "" && resp.Secret != "" {
		qrImage, err = s.renderQR(resp.Secret, in.AccountEmail)
		if err != nil {
			// Enrollment still works by typing the secret manually.
			s.log.Warn("could not render provisioning QR code", "error", err)
			qrImage = ""
		}
	}

	return &auth.Result{
		Success: true,
		Metadata: map[string]any{
			"method":      in.Method,
			"secret":      resp.Secret,
			"qrCode":      qrImage,
			"backupCodes": resp.BackupCodes,
		},
	}, nil
}

func (s *TwoFactorStrategy) disable(ctx context.Context, in TwoFactorInput) (*auth.Result, error) {
	resp, err := s.api.TwoFactorDisable(ctx, api.TwoFactorDisableRequest{Password: in.Password})
	if err != nil {
		if result, ok := s.mapAPIError(err); ok {
			return result, nil
		}
		return nil, err
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = msgGenericError
		}
		return auth.Failure(msg), nil
	}

	return &auth.Result{Success: true}, nil
}

func (s *TwoFactorStrategy) verify(ctx context.Context, in TwoFactorInput) (*auth.Result, error) {
	resp, err := s.api.TwoFactorVerify(ctx, api.TwoFactorVerifyRequest{
		Code:         in.Code,
		SessionID:    in.SessionID,
		IsBackupCode: in.IsBackupCode,
	})
	if err != nil {
		if result, ok := s.mapAPIError(err); ok {
			return result, nil
		}
		return nil, err
	}

	return normalizeAuthResponse(resp), nil
}

// renderQR encodes the otpauth provisioning URI as a base64 PNG data
// URI, the same format the server uses when it renders the image.
func (s *TwoFactorStrategy) renderQR(secret, accountEmail string) (string, error) {
	label := s.issuer
	if accountEmail != "" {
		label = s.issuer + ":" + accountEmail
	}

	uri := fmt.Sprintf("otpauth://totp/%s?secret=%s&issuer=%s",
		url.PathEscape(label), url.QueryEscape(secret), url.QueryEscape(s.issuer))

	png, err := qrcode.Encode(uri, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("strategy: encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
