package auth

// Flow identifiers used to register and dispatch authentication
// strategies. The set is closed: the registry is built once at startup
// and never mutated afterward.
const (
	FlowLogin          = "login"
	FlowRegister       = "register"
	FlowTwoFactor      = "two-factor"
	FlowGoogle         = "google-auth"
	FlowForgotPassword = "forgot-password"
)

// Two-factor enrollment methods accepted by the setup endpoint.
const (
	TwoFactorMethodTOTP = "totp"
	TwoFactorMethodSMS  = "sms"
)

// User is the identity record owned by the session state. It is
// replaced wholesale on every successful authentication result and is
// read-only to every other component.
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone,omitempty"`
	BirthDate        string `json:"birthDate,omitempty"`
	Role             string `json:"role,omitempty"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Result is the normalized output of every authentication strategy.
// It is constructed fresh per call, consumed immediately by the session
// manager, and never stored.
//
// Success reports that the request itself succeeded; a login that was
// accepted but still needs a second factor has Success true together
// with RequiresTwoFactor true and no token. Callers must check both.
type Result struct {
	Success           bool
	User              *User
	Token             string
	RefreshToken      string
	RequiresTwoFactor bool
	SessionID         string
	Error             string
	Metadata          map[string]any
}

// Authenticated reports whether the result carries a usable access
// token, i.e. the flow completed all the way to an authenticated
// session.
func (r *Result) Authenticated() bool {
	return r != nil && r.Success && r.Token != "" && !r.RequiresTwoFactor
}

// Failure builds a failed result with the given user-facing message.
func Failure(msg string) *Result {
	return &Result{Success: false, Error: msg}
}
