package crewauth

import "errors"

var (
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserInactive is an exported constant or variable used by the authentication engine.
	ErrUserInactive = errors.New("user account is inactive")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCredentialsNotFound is an exported constant or variable used by the authentication engine.
	ErrCredentialsNotFound = errors.New("credential record not found")
	// ErrPasswordPolicy is an exported constant or variable used by the authentication engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is an exported constant or variable used by the authentication engine.
	ErrPasswordReuse = errors.New("new password must differ from recently used passwords")
	// ErrResetInvalid is an exported constant or variable used by the authentication engine.
	ErrResetInvalid = errors.New("password reset token invalid or expired")
	// ErrSessionNotFound is an exported constant or variable used by the authentication engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPermissionDenied is an exported constant or variable used by the authentication engine.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
