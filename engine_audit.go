package crewauth

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess                = "auth.login_success"
	auditEventLoginFailure                = "auth.login_failure"
	auditEventCredentialsMissing          = "auth.credentials_missing"
	auditEventPermissionResolutionFailure = "auth.permission_resolution_failed"
	auditEventSessionCreated              = "session.created"
	auditEventSessionDestroyed            = "session.destroyed"
	auditEventSessionInvalidatedAll       = "session.invalidated_all"
	auditEventPasswordChangeSuccess       = "password.change_success"
	auditEventPasswordChangeInvalidOld    = "password.change_invalid_old"
	auditEventPasswordChangeReuse         = "password.change_reuse_attempt"
	auditEventPasswordChangeFailure       = "password.change_failure"
	auditEventPasswordResetRequest        = "password.reset_request"
	auditEventPasswordResetConfirm        = "password.reset_confirm"
	auditEventPasswordResetInvalid        = "password.reset_invalid"
	auditEventPermissionGranted           = "permission.granted"
	auditEventPermissionRevoked           = "permission.revoked"
)

// AuditErrorCode defines a public type used by crewauth APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrCredentialsMissing AuditErrorCode = "credentials_missing"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrUserInactive       AuditErrorCode = "user_inactive"
	auditErrSessionNotFound    AuditErrorCode = "session_not_found"
	auditErrPasswordPolicy     AuditErrorCode = "password_policy"
	auditErrPasswordReuse      AuditErrorCode = "password_reuse"
	auditErrResetInvalid       AuditErrorCode = "reset_invalid"
	auditErrPermissionDenied   AuditErrorCode = "permission_denied"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrCredentialsNotFound):
		return auditErrCredentialsMissing
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrUserInactive):
		return auditErrUserInactive
	case errors.Is(err, ErrSessionNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrPasswordReuse):
		return auditErrPasswordReuse
	case errors.Is(err, ErrResetInvalid):
		return auditErrResetInvalid
	case errors.Is(err, ErrPermissionDenied):
		return auditErrPermissionDenied
	default:
		return auditErrInternal
	}
}
