package entities

// SessionState is the position of a browser session in the login flow.
type SessionState string

const (
	StateLoggedOut      SessionState = "logged_out"
	StateAuthenticating SessionState = "authenticating"
	StateLoggedIn       SessionState = "logged_in"
)

// Session is the authentication state of the current user.
// User is non-empty iff Authenticated is true.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user"`
}

// Consistent reports whether the User/Authenticated invariant holds.
func (s Session) Consistent() bool {
	return s.Authenticated == (s.User != "")
}
