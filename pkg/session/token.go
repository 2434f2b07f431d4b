package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vitalpath/authkit/pkg/auth"
)

// TokenExpiry extracts the expiry deadline from an access token's exp
// claim. The signature is not verified; only the server can do that,
// and the client needs just the deadline for scheduling.
func TokenExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, errors.Join(auth.ErrTokenInvalid, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoTokenExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// tokenExpired reports whether the token is unparseable, missing an
// expiry, or already past it. Used during bootstrap to decide whether a
// persisted token is worth restoring.
func tokenExpired(token string) bool {
	expiry, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	return time.Now().After(expiry)
}
