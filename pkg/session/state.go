package session

import "github.com/vitalpath/authkit/pkg/auth"

// State is the observable authentication state. Snapshots are values;
// the User pointer they carry is read-only by convention.
//
// Invariants the manager maintains: IsAuthenticated implies a non-empty
// AccessToken, and RequiresTwoFactor implies IsAuthenticated is false;
// a user mid-challenge is not yet authenticated.
type State struct {
	IsAuthenticated   bool
	User              *auth.User
	AccessToken       string
	RefreshToken      string
	RequiresTwoFactor bool
	TwoFactorEnabled  bool
	IsLoading         bool
	LastError         string
}
