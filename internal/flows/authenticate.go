package flows

import (
	"context"
	"time"
)

// Caller-visible authentication failure messages. Not-found and inactive are
// deliberately distinguishable from bad-credentials; missing credential
// records are not.
const (
	MessageUserNotFound       = "User not found"
	MessageUserInactive       = "User account is inactive"
	MessageInvalidCredentials = "Invalid credentials"
	MessageAuthFailed         = "Authentication failed"
)

// Flow-local failure reason codes mapped by the root engine onto its public
// FailureReason enum.
const (
	ReasonNone = iota
	ReasonUserNotFound
	ReasonInactive
	ReasonInvalidCredentials
	ReasonInternal
)

// AuthUserRecord is a flow-local user model used by the authenticate flow.
type AuthUserRecord struct {
	ID          string
	EmployeeID  string
	FirstName   string
	LastName    string
	Email       string
	PrimaryRole string
	IsActive    bool
	LastLogin   time.Time
}

// CredentialRecord is a flow-local credential model.
type CredentialRecord struct {
	PasswordHash string
}

// PermissionRecord is a flow-local permission model.
type PermissionRecord struct {
	ID          int64
	Name        string
	Resource    string
	Action      string
	Description string
}

// AuthOutcome is the flow-local authenticate response shape.
type AuthOutcome struct {
	Success     bool
	User        AuthUserRecord
	Permissions []PermissionRecord
	Reason      int
	Message     string
}

// AuthMetrics carries metric IDs needed by the authenticate flow.
type AuthMetrics struct {
	LoginSuccess                int
	LoginFailure                int
	PermissionResolutionFailure int
}

// AuthEvents carries audit event names used by the authenticate flow.
type AuthEvents struct {
	LoginSuccess                string
	LoginFailure                string
	CredentialsMissing          string
	PermissionResolutionFailure string
}

// AuthErrors carries host-level sentinel errors used by the authenticate flow.
type AuthErrors struct {
	EngineNotReady     error
	UserNotFound       error
	UserInactive       error
	InvalidCredentials error
	CredentialsMissing error
}

// AuthenticateDeps captures authenticate-flow dependencies.
type AuthenticateDeps struct {
	FindByEmail        func(context.Context, string) (*AuthUserRecord, error)
	Credentials        func(context.Context, string) (*CredentialRecord, error)
	VerifyPassword     func(string, string) bool
	ResolvePermissions func(context.Context, string) ([]PermissionRecord, error)
	UpdateLastLogin    func(context.Context, string) error

	MetricInc func(int)
	EmitAudit func(context.Context, string, bool, string, string, string, error, func() map[string]string)
	Warn      func(string, ...any)

	Metrics AuthMetrics
	Events  AuthEvents
	Errors  AuthErrors
}

// RunAuthenticate executes the credential check, permission resolution, and
// failure classification for a login attempt. Session issuance is the
// caller's concern.
//
// Every failure maps to a structured outcome rather than an error return; an
// error return means the flow itself was wired incorrectly.
func RunAuthenticate(ctx context.Context, email, password string, deps AuthenticateDeps) (*AuthOutcome, error) {
	if deps.FindByEmail == nil || deps.Credentials == nil || deps.VerifyPassword == nil || deps.ResolvePermissions == nil {
		return nil, deps.Errors.EngineNotReady
	}

	user, err := deps.FindByEmail(ctx, email)
	if err != nil {
		deps.metricInc(deps.Metrics.LoginFailure)
		deps.emitAudit(ctx, deps.Events.LoginFailure, false, "", email, "", err, func() map[string]string {
			return map[string]string{
				"reason": "directory_lookup_failed",
			}
		})
		deps.warn("crewauth: user lookup failed during authenticate")
		return &AuthOutcome{Reason: ReasonInternal, Message: MessageAuthFailed}, nil
	}
	if user == nil {
		deps.metricInc(deps.Metrics.LoginFailure)
		deps.emitAudit(ctx, deps.Events.LoginFailure, false, "", email, "", deps.Errors.UserNotFound, func() map[string]string {
			return map[string]string{
				"reason": "user_not_found",
			}
		})
		return &AuthOutcome{Reason: ReasonUserNotFound, Message: MessageUserNotFound}, nil
	}

	// Inactive accounts short-circuit before any credential lookup.
	if !user.IsActive {
		deps.metricInc(deps.Metrics.LoginFailure)
		deps.emitAudit(ctx, deps.Events.LoginFailure, false, user.ID, email, "", deps.Errors.UserInactive, func() map[string]string {
			return map[string]string{
				"reason": "account_inactive",
			}
		})
		return &AuthOutcome{Reason: ReasonInactive, Message: MessageUserInactive}, nil
	}

	cred, err := deps.Credentials(ctx, user.ID)
	if err != nil {
		deps.metricInc(deps.Metrics.LoginFailure)
		deps.emitAudit(ctx, deps.Events.LoginFailure, false, user.ID, email, "", err, func() map[string]string {
			return map[string]string{
				"reason": "credential_lookup_failed",
			}
		})
		deps.warn("crewauth: credential lookup failed during authenticate")
		return &AuthOutcome{Reason: ReasonInternal, Message: MessageAuthFailed}, nil
	}
	if cred == nil {
		// Integrity gap: active user without a credential record. The caller
		// sees the generic bad-credentials message; the audit trail records
		// the real cause.
		deps.metricInc(deps.Metrics.LoginFailure)
		deps.emitAudit(ctx, deps.Events.CredentialsMissing, false, user.ID, email, "", deps.Errors.CredentialsMissing, nil)
		deps.warn("crewauth: credential record missing for active user")
		return &AuthOutcome{Reason: ReasonInvalidCredentials, Message: MessageInvalidCredentials}, nil
	}

	if !deps.VerifyPassword(password, cred.PasswordHash) {
		deps.metricInc(deps.Metrics.LoginFailure)
		deps.emitAudit(ctx, deps.Events.LoginFailure, false, user.ID, email, "", deps.Errors.InvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return &AuthOutcome{Reason: ReasonInvalidCredentials, Message: MessageInvalidCredentials}, nil
	}
	password = ""

	perms, err := deps.ResolvePermissions(ctx, user.ID)
	if err != nil {
		deps.metricInc(deps.Metrics.PermissionResolutionFailure)
		deps.metricInc(deps.Metrics.LoginFailure)
		deps.emitAudit(ctx, deps.Events.PermissionResolutionFailure, false, user.ID, email, "", err, nil)
		deps.warn("crewauth: permission resolution failed during authenticate")
		return &AuthOutcome{Reason: ReasonInternal, Message: MessageAuthFailed}, nil
	}

	if deps.UpdateLastLogin != nil {
		// Last-login bookkeeping is best-effort and must not block login.
		if err := deps.UpdateLastLogin(ctx, user.ID); err != nil {
			deps.warn("crewauth: last login update failed")
		}
	}

	deps.metricInc(deps.Metrics.LoginSuccess)
	deps.emitAudit(ctx, deps.Events.LoginSuccess, true, user.ID, email, "", nil, nil)

	return &AuthOutcome{
		Success:     true,
		User:        *user,
		Permissions: perms,
	}, nil
}

func (d AuthenticateDeps) metricInc(id int) {
	if d.MetricInc != nil {
		d.MetricInc(id)
	}
}

func (d AuthenticateDeps) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	sessionID string,
	err error,
	metadata func() map[string]string,
) {
	if d.EmitAudit != nil {
		d.EmitAudit(ctx, eventType, success, userID, email, sessionID, err, metadata)
	}
}

func (d AuthenticateDeps) warn(format string, args ...any) {
	if d.Warn != nil {
		d.Warn(format, args...)
	}
}
