package app

import "errors"

var (
	// ErrInvalidCredentials is returned when login credentials do not
	// match. The message is shown to end users and deliberately does not
	// say which half was wrong.
	ErrInvalidCredentials = errors.New("Incorrect username or password")

	// ErrUserDisabled is returned when the account exists but is inactive.
	ErrUserDisabled = errors.New("account is disabled")

	// ErrUserLocked is returned while a lockout window is still open.
	ErrUserLocked = errors.New("account is temporarily locked")
)
