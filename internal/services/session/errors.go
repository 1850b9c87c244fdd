package session

import "errors"

// InvalidCredentialsAlert is the text shown to the user on a failed login.
const InvalidCredentialsAlert = "Invalid credentials. Use: admin / greenhouse123"

var (
	// ErrInvalidCredentials is returned when the submitted pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginInProgress is returned when a login is submitted while another is resolving.
	ErrLoginInProgress = errors.New("login already in progress")
	// ErrAlreadyLoggedIn is returned when a login is submitted on a logged in session.
	ErrAlreadyLoggedIn = errors.New("already logged in")
	// ErrLoginCanceled is delivered to a pending login cut short by Logout.
	ErrLoginCanceled = errors.New("login canceled")
	// ErrNotLoggedIn is returned when the dashboard is requested without a session.
	ErrNotLoggedIn = errors.New("not logged in")
)
